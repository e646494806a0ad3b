package config

// DispatchConfig configures the out-of-band code delivery channel.
type DispatchConfig struct {
	Provider    string // console, ses or sns
	FromAddress string
	SenderID    string
	AWSRegion   string
}

func loadDispatchConfig() DispatchConfig {
	return DispatchConfig{
		Provider:    getEnv("DISPATCH_PROVIDER", "console"),
		FromAddress: getEnv("DISPATCH_FROM_ADDRESS", "noreply@praxis.health"),
		SenderID:    getEnv("DISPATCH_SENDER_ID", "Praxis"),
		AWSRegion:   getEnv("DISPATCH_AWS_REGION", getEnv("AWS_REGION", "us-east-1")),
	}
}
