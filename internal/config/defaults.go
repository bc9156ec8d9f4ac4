package config

// DefaultElectrumHost/Port are a well-known public Electrum server used when
// the user hasn't configured one. TLS is on by default; plaintext is opt-in.
const (
	DefaultElectrumHost = "electrum.blockstream.info"
	DefaultElectrumPort = 50002
)

// DefaultGapLimit is BIP44's conventional gap limit (§4.5, §6).
const DefaultGapLimit = 20

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Version: 1,
		Home:    "~/.walletcore",
		Electrum: ElectrumConfig{
			Host: DefaultElectrumHost,
			Port: DefaultElectrumPort,
			SSL:  true,
		},
		Wallet: WalletConfig{
			NetworkType:       Mainnet,
			GapLimit:          DefaultGapLimit,
			AutoRotateReceive: true,
			UseNewTxPipeline:  true,
		},
		Security: SecurityConfig{
			AutoLockSeconds:     0,
			RequireConfirmAbove: 0,
			MemoryLock:          true,
		},
		Output: OutputConfig{
			DefaultFormat: "auto",
			Color:         "auto",
			Verbose:       false,
		},
		Logging: LoggingConfig{
			Level: "error",
			File:  "~/.walletcore/walletcore.log",
		},
	}
}
