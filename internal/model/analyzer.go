package model

// Record kinds, the filename suffix after the last "+-+" separator.
const (
	KindTBit               = "tbit.csv"
	KindLBit               = "lbit.csv"
	KindQBit               = "qbit.csv"
	KindRBit               = "rbit.csv"
	KindGroundClientSwitch = "groundtruth_loss_clientswitch.csv"
	KindGroundSwitchServer = "groundtruth_loss_switchserver.csv"
	KindGroundServerSwitch = "groundtruth_loss_serverswitch.csv"
	KindGroundSwitchClient = "groundtruth_loss_switchclient.csv"
	KindPaperEval          = "groundtruth_overall_packets_and_loss_count.csv"
)

// KnownKinds lists every record kind the engine consumes.
var KnownKinds = []string{
	KindTBit, KindLBit, KindQBit, KindRBit,
	KindGroundClientSwitch, KindGroundSwitchServer, KindGroundServerSwitch, KindGroundSwitchClient,
	KindPaperEval,
}

// Inputs maps a record kind to the file holding it for one iteration.
type Inputs map[string]string

// Analyzer turns the input files of one iteration into loss timelines.
type Analyzer interface {
	// Name returns the technique name, e.g. "tbit".
	Name() string

	// Analyze reads the files it needs from inputs. A missing primary
	// input is reported with an error wrapping ErrMissingTechniqueData.
	Analyze(inputs Inputs) (*Result, error)

	// SummaryBucket names the bucket whose last cumulative loss
	// represents the technique in a scenario summary.
	SummaryBucket() string
}
