package spectra

type Configuration struct {
	MaxFiles         int       `json:"max_files"`
	Skip             int       `json:"skip"`
	Verbosity        int       `json:"verbosity"`
	FileIn           string    `json:"file_in"`
	RunDir           string    `json:"run_dir"`
	FileOut          string    `json:"file_out"`
	EonChannel       string    `json:"eon_channel"`
	SampleWidthNs    float64   `json:"sample_width_ns"`
	TimeZero         float64   `json:"time_zero"`
	PropConstInit    float64   `json:"prop_const_init"`
	CalTofNs         []float64 `json:"cal_tof_ns"`
	CalEkeEv         []float64 `json:"cal_eke_ev"`
	Retardation      float64   `json:"retardation"`
	RebinBins        int       `json:"rebin_bins"`
	RebinMaxEv       float64   `json:"rebin_max_ev"`
	NoDB             bool      `json:"no_db"`
	Discard          bool      `json:"discard"`
	Host             string    `json:"host"`
	User             string    `json:"user"`
	Passwd           string    `json:"pass"`
	DBName           string    `json:"dbname"`
	NumWorkers       int       `json:"num_workers"`
	WriteData        bool      `json:"write_data"`
	CompressionLevel int       `json:"compression_level"`
	MakePlots        bool      `json:"make_plots"`
	PlotDir          string    `json:"plot_dir"`
	HTMLReport       bool      `json:"html_report"`
	ReportOut        string    `json:"report_out"`
}

var configuration Configuration

func GetConfiguration() Configuration {
	return configuration
}

func SetConfiguration(config Configuration) {
	configuration = config
}
