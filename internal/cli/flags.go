package cli

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile    string
	ModelDir   string
	SourceLang string
	TargetLang string
	BatchFile  string
	OutputFile string
	ListModels bool
	ModelRoot  string
	ListLangs  bool

	// History flags
	HistoryFile    string
	NoHistory      bool
	ShowHistory    int
	ArchiveHistory bool

	// Engine flags
	CacheSize int
	MaxSteps  int
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		SourceLang: "en",
		TargetLang: "fr",
		CacheSize:  200,
		MaxSteps:   256,
	}
}
