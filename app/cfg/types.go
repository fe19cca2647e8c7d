package cfg

import "time"

type Cfg struct {
	// Storage configuration
	DBPath   string
	InMemory bool

	// Moderation configuration
	RulesFile         string
	ProcessingDelay   time.Duration
	ProcessingTimeout time.Duration
	EditorialNotes    bool

	// Application configuration
	ImportsDir   string
	Port         string
	BaseUrl      string
	WorkerCount  int
	APIAccessKey string

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
