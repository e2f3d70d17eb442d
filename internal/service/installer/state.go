package installer

// EnvFile is the subset of the configuration the wizard asks for. Field
// order is the order of lines in the written .env file.
type EnvFile struct {
	TelegramToken      string `env:"HUBGRAM_TELEGRAM_TOKEN"`
	GitHubClientID     string `env:"HUBGRAM_GITHUB_CLIENT_ID"`
	GitHubClientSecret string `env:"HUBGRAM_GITHUB_CLIENT_SECRET"`
	WebhookSecret      string `env:"HUBGRAM_GITHUB_WEBHOOK_SECRET"`
	GitHubToken        string `env:"HUBGRAM_GITHUB_TOKEN"`
	RenderMode         string `env:"HUBGRAM_GITHUB_RENDER_MODE"`
	StateSecret        string `env:"HUBGRAM_STATE_SECRET"`
	PublicURL          string `env:"HUBGRAM_PUBLIC_URL"`
	HTTPAddr           string `env:"HUBGRAM_HTTP_ADDR"`
}

type InstallState struct {
	Env EnvFile
}

func NewInstallState() *InstallState {
	return &InstallState{}
}
