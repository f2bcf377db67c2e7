package datarecording

var _ DataRecorder = (*clickHouseRecorder)(nil)
var _ DataRecorder = (*sqliteWriter)(nil)
var _ DataReader = (*sqliteReader)(nil)
