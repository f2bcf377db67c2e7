// Command boxsim runs robot box-stacking simulations.
package main

import "github.com/tebeka/atexit"

func main() {
	atexit.Exit(Execute())
}
