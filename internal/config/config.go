// Package config defines this module's process-wide configuration,
// loaded by viper the same way cmd/gate/gate.go loads the teacher's
// config.Config.
package config

// Config is the root configuration object, unmarshaled by viper from
// feather.yaml (or environment overrides) at process start.
type Config struct {
	Server Server `mapstructure:"server"`
}

// Server holds the settings this module's login path consumes.
type Server struct {
	// ListenAddr is the TCP address the accept loop binds to.
	ListenAddr string `mapstructure:"listen_addr"`
	// OnlineMode selects the Login branch: true authenticates against
	// Mojang's session service, false generates a synthetic profile.
	OnlineMode bool `mapstructure:"online_mode"`
	// MaxPlayers is reported in the status response.
	MaxPlayers int32 `mapstructure:"max_players"`
	// Motd is the server-list description. Plain text is wrapped into a
	// chat component by the status responder.
	Motd string `mapstructure:"motd"`
	// Favicon optionally names a PNG file shown in the server list.
	Favicon string `mapstructure:"favicon"`
	// RSABits overrides the RSA key size for tests; production deploys
	// must leave this at the default 1024 to match notchian clients.
	RSABits int `mapstructure:"rsa_bits"`
	// AuthWorkers sizes the session-authentication worker pool.
	AuthWorkers int `mapstructure:"auth_workers"`
	// AuthTimeoutMillis bounds each Mojang session-service request.
	AuthTimeoutMillis int `mapstructure:"auth_timeout_millis"`
	// Debug switches the zap logger to development mode.
	Debug bool `mapstructure:"debug"`
}

// ServerName and ProtocolVersion are the process-wide protocol constants
// named in spec.md §6. They are not user-configurable: changing either
// breaks interoperability with 1.16.2-era clients.
const (
	ServerName      = "Feather 1.16.2"
	ProtocolVersion = 751
)

// DefaultRSABits is the notchian-compatible RSA key size; see spec.md §4.F.
const DefaultRSABits = 1024

// VerifyTokenLength and SharedSecretLength are the fixed sizes spec.md §6 mandates.
const (
	VerifyTokenLength  = 16
	SharedSecretLength = 16
)

// Default fills in zero-valued fields with this module's defaults. Called
// after viper.Unmarshal so a minimal feather.yaml still produces a valid
// configuration.
func (c *Config) Default() {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = "0.0.0.0:25565"
	}
	if c.Server.MaxPlayers == 0 {
		c.Server.MaxPlayers = 20
	}
	if c.Server.Motd == "" {
		c.Server.Motd = "A Feather Server"
	}
	if c.Server.RSABits == 0 {
		c.Server.RSABits = DefaultRSABits
	}
	if c.Server.AuthWorkers == 0 {
		c.Server.AuthWorkers = 4
	}
	if c.Server.AuthTimeoutMillis == 0 {
		c.Server.AuthTimeoutMillis = 5000
	}
}
