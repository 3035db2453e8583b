package cfg

type Cfg struct {
	// Storage configuration
	DBPath string

	// Upstream aggregator configuration
	AggregatorURL     string
	AggregatorTimeout int
	FeedLimit         int
	ExploreLimit      int

	// Application configuration
	SectionsFile      string
	Port              string
	ExploreCacheTTL   int
	WorkerCount       int
	SchedulerInterval int
	RetentionDays     int
	APIAccessKey      string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
