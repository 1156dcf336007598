package model

// APIServer holds the api server configuration
type APIServer struct {
	Addr string `envconfig:"LISTEN_ADDR" default:":8000"`
	TLS  TLS
}

// TLS holds the tls configuration
type TLS struct {
	Enabled      bool   `envconfig:"TLS_ENABLED" default:"false"`
	CertFilePath string `envconfig:"TLS_CERT_FILE"`
	KeyFilePath  string `envconfig:"TLS_KEY_FILE"`
}

// Log holds the log configuration
type Log struct {
	FolderPath string `envconfig:"LOG_FOLDER"`
}

// Tracing holds the otel collector configuration, tracing is disabled
// when no address is configured
type Tracing struct {
	Addr    string `envconfig:"TRACING_ADDR"`
	Timeout int    `envconfig:"TRACING_TIMEOUT" default:"10"`
}

// Cfg is the configuration of the server, read from the environment
type Cfg struct {
	// ExternalHostname is the host used to form DIDs and the domain of
	// proof parameter challenges
	ExternalHostname string `envconfig:"EXTERNAL_HOSTNAME" default:"localhost"`

	// ExternalPort is the port used in DID formation
	ExternalPort string `envconfig:"EXTERNAL_PORT" default:"8000"`

	// ExternalPath is the path prefix prepended to each DID
	ExternalPath string `envconfig:"EXTERNAL_PATH" default:"/"`

	// Owner is the DID of the server administrator, authorized to
	// create and delete documents
	Owner string `envconfig:"OWNER" validate:"required"`

	// Resolver is an optional fallback HTTP DID resolver URL, tried
	// after the built-in methods
	Resolver string `envconfig:"RESOLVER" validate:"omitempty,url"`

	// ResolverOverride is an optional override HTTP DID resolver URL,
	// tried before the built-in methods
	ResolverOverride string `envconfig:"RESOLVER_OVERRIDE" validate:"omitempty,url"`

	// ResolverTimeout bounds every remote resolver call, in seconds
	ResolverTimeout int `envconfig:"RESOLVER_TIMEOUT" default:"10"`

	// Backend selects the store backend, mem or file
	Backend string `envconfig:"BACKEND" default:"mem"`

	// BackendFileStore is the root directory of the file backend,
	// default $PWD/did_store
	BackendFileStore string `envconfig:"BACKEND_FILE_STORE"`

	Production bool `envconfig:"PRODUCTION" default:"false"`

	APIServer APIServer
	Log       Log
	Tracing   Tracing
}
