package experiment

// Results are plain JSON-tagged structs. Tables keyed by state use the
// state's string form, "(x, y)" for grid cells and "(x, y)|action" for
// state-action pairs.

// Cell is a grid position.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// StateInfo describes one non-terminal gridworld state.
type StateInfo struct {
	X       int                `json:"x"`
	Y       int                `json:"y"`
	Type    string             `json:"type"`
	Reward  float64            `json:"reward"`
	Actions []string           `json:"actions"`
	Value   *float64           `json:"value,omitempty"`
	QValues map[string]float64 `json:"qValues,omitempty"`
}

// GridData describes a gridworld together with learned values.
type GridData struct {
	Width        int         `json:"width"`
	Height       int         `json:"height"`
	Rows         []string    `json:"rows"`
	CurrentState *Cell       `json:"currentState"`
	IsTerminal   bool        `json:"isTerminal"`
	States       []StateInfo `json:"states"`
	Walls        []Cell      `json:"walls"`
	LivingReward float64     `json:"livingReward"`
	Noise        float64     `json:"noise"`
}

// ValueIterationResult is returned by Runner.ValueIteration.
type ValueIterationResult struct {
	ExperimentID string             `json:"experimentId"`
	Grid         string             `json:"grid"`
	Iterations   int                `json:"iterations"`
	Discount     float64            `json:"discount"`
	Noise        float64            `json:"noise"`
	LivingReward float64            `json:"livingReward"`
	Sweeps       int                `json:"sweeps"`
	Residual     float64            `json:"residual"`
	GridData     GridData           `json:"gridData"`
	Values       map[string]float64 `json:"values"`
	QValues      map[string]float64 `json:"qValues"`
	Policy       map[string]string  `json:"policy"`
}

// EpisodeReport is one sampled training episode.
type EpisodeReport struct {
	Episode     int     `json:"episode"`
	TotalReward float64 `json:"totalReward"`
	Steps       int     `json:"steps"`
	Terminated  bool    `json:"terminated"`
}

// TrainingSummary aggregates every completed episode of a run.
type TrainingSummary struct {
	Completed  int     `json:"completed"`
	Abandoned  int     `json:"abandoned"`
	MeanReward float64 `json:"meanReward"`
	StdReward  float64 `json:"stdReward"`
	MeanSteps  float64 `json:"meanSteps"`
}

// TransitionRecord is one learned transition.
type TransitionRecord struct {
	Episode   int     `json:"episode"`
	Step      int     `json:"step"`
	State     string  `json:"state"`
	Action    string  `json:"action"`
	Reward    float64 `json:"reward"`
	NextState string  `json:"nextState"`
	Done      bool    `json:"done"`
}

// QLearningResult is returned by Runner.QLearning.
type QLearningResult struct {
	ExperimentID    string             `json:"experimentId"`
	Grid            string             `json:"grid"`
	Agent           string             `json:"agent"`
	Episodes        int                `json:"episodes"`
	Epsilon         float64            `json:"epsilon"`
	Alpha           float64            `json:"alpha"`
	Discount        float64            `json:"discount"`
	Noise           float64            `json:"noise"`
	LivingReward    float64            `json:"livingReward"`
	Seed            int64              `json:"seed"`
	TrainingHistory []EpisodeReport    `json:"trainingHistory"`
	Summary         TrainingSummary    `json:"summary"`
	GridData        GridData           `json:"gridData"`
	Values          map[string]float64 `json:"values"`
	QValues         map[string]float64 `json:"qValues"`
	Policy          map[string]string  `json:"policy"`
	Weights         map[string]float64 `json:"weights,omitempty"`
	Transitions     []TransitionRecord `json:"transitions,omitempty"`
}

// GameState is a finished Pacman game. Grids are indexed [x][y].
type GameState struct {
	Score          int      `json:"score"`
	PacmanPosition [2]int   `json:"pacmanPosition"`
	GhostPositions [][2]int `json:"ghostPositions"`
	ScaredTimers   []int    `json:"scaredTimers"`
	Food           [][]bool `json:"food"`
	Capsules       [][2]int `json:"capsules"`
	IsWin          bool     `json:"isWin"`
	IsLose         bool     `json:"isLose"`
	Width          int      `json:"width"`
	Height         int      `json:"height"`
	Walls          [][]bool `json:"walls"`
}

// GameResult is one evaluation game.
type GameResult struct {
	GameIndex  int        `json:"gameIndex"`
	Score      int        `json:"score"`
	IsWin      bool       `json:"isWin"`
	IsLose     bool       `json:"isLose"`
	Steps      int        `json:"steps"`
	FinalState *GameState `json:"finalState"`
}

// GameSummary aggregates the evaluation games.
type GameSummary struct {
	Wins      int     `json:"wins"`
	Losses    int     `json:"losses"`
	AvgScore  float64 `json:"avgScore"`
	Abandoned int     `json:"abandoned"`
}

// PacmanResult is returned by Runner.RunPacman.
type PacmanResult struct {
	ExperimentID    string             `json:"experimentId"`
	Layout          string             `json:"layout"`
	Agent           string             `json:"agent"`
	Ghost           string             `json:"ghost"`
	NumTraining     int                `json:"numTraining"`
	NumGames        int                `json:"numGames"`
	Seed            int64              `json:"seed"`
	Games           []GameResult       `json:"games"`
	Summary         GameSummary        `json:"summary"`
	TrainingHistory []EpisodeReport    `json:"trainingHistory"`
	Weights         map[string]float64 `json:"weights,omitempty"`
}

// Comparison is one algorithm's outcome in a CompareResult.
type Comparison struct {
	Algorithm  string             `json:"algorithm"`
	Iterations int                `json:"iterations,omitempty"`
	Episodes   int                `json:"episodes,omitempty"`
	Values     map[string]float64 `json:"values"`
	Policy     map[string]string  `json:"policy"`
}

// CompareResult is returned by Runner.Compare.
type CompareResult struct {
	ExperimentID string       `json:"experimentId"`
	Grid         string       `json:"grid"`
	Seed         int64        `json:"seed"`
	Comparisons  []Comparison `json:"comparisons"`
	GridData     GridData     `json:"gridData"`

	// PolicyAgreement is the fraction of states on which Q-learning picked
	// the same action as value iteration.
	PolicyAgreement float64 `json:"policyAgreement"`
}

// LayoutDetails describes a Pacman layout. Grids are indexed [x][y].
type LayoutDetails struct {
	Name        string   `json:"name"`
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	Walls       [][]bool `json:"walls"`
	Food        [][]bool `json:"food"`
	Capsules    [][2]int `json:"capsules"`
	NumGhosts   int      `json:"numGhosts"`
	PacmanStart [2]int   `json:"pacmanStart"`
	GhostStarts [][2]int `json:"ghostStarts"`
}

// EnvironmentList names every environment a run can use.
type EnvironmentList struct {
	Layouts    []string `json:"layouts"`
	Gridworlds []string `json:"gridworlds"`
}

// AgentInfo describes a selectable agent.
type AgentInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AgentList groups agents by the environment they run on.
type AgentList struct {
	PacmanAgents    []AgentInfo `json:"pacman_agents"`
	GridworldAgents []AgentInfo `json:"gridworld_agents"`
}

// AlgorithmInfo is static descriptive metadata about an algorithm.
type AlgorithmInfo struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Pros        []string `json:"pros"`
	Cons        []string `json:"cons"`
	Parameters  []string `json:"parameters"`
	Equation    string   `json:"equation"`
	Available   bool     `json:"available"`
}
