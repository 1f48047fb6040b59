package streaming

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config groups streaming tunables. Values are taken from environment
// variables with the prefix "FEDI". Example: FEDI_STREAMING_URL=wss://… .
type Config struct {
	// StreamingURL is the websocket endpoint, e.g. wss://example.social.
	// The /api/v1/streaming path is appended by Subscribe.
	StreamingURL string `envconfig:"STREAMING_URL"`

	// AccessToken authenticates the subscription. May be empty for public
	// channels.
	AccessToken string `envconfig:"ACCESS_TOKEN"`

	HandshakeTimeout time.Duration `envconfig:"HANDSHAKE_TIMEOUT" default:"10s"`

	// ReadTimeout bounds the silence between server messages; servers
	// heartbeat well inside it.
	ReadTimeout time.Duration `envconfig:"READ_TIMEOUT" default:"90s"`
}

// LoadConfig populates Config from environment variables (prefix FEDI).
func LoadConfig() (Config, error) {
	var c Config
	return c, envconfig.Process("FEDI", &c)
}
