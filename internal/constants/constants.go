package constants

const (
	AppName           = "mindtrack"
	Version           = "v0.1.0"
	EnvPrefix         = "MINDTRACK"
	DefaultConfigName = "mindtrack"
	DefaultDataDir    = "."
	DefaultDBFile     = "mind_track.sqlite"
	LogDirName        = "logs"
	LogFileName       = "mindtrack.log"

	// DateFormat is the calendar date format used for check-in dates (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimestampFormat is a fixed-width UTC ISO-8601 layout. Fixed width keeps
	// lexical order equal to chronological order in TEXT columns.
	TimestampFormat = "2006-01-02T15:04:05.000000Z07:00"

	// Check-in limits
	MoodLevelMin           = 1
	MoodLevelMax           = 5
	MaxMoodTextLen         = 500
	MaxPhysicalStateTags   = 10
	MaxPhysicalStateTagLen = 20
	MaxPhysicalStateText   = 500
	MaxPotentialTodos      = 3
	MaxPotentialTodoLen    = 100

	// Micro-task limits
	MaxTaskDescriptionLen = 200
	MaxTaskMemoLen        = 1000

	// Resource types reported in NotFound errors
	ResourceDailyCheckin = "DailyCheckin"
	ResourceMicroTask    = "MicroTask"
)
