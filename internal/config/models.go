package config

// ServerConfig represents the configuration for the HTTP request layer
type ServerConfig struct {
	ListenAddress string
}

// GmailConfig represents the configuration for the Gmail inbox gateway
type GmailConfig struct {
	User            string
	CredentialsFile string
	TokenFile       string
	Label           string
}

// SMTPConfig represents the configuration for the outbound mail transport
type SMTPConfig struct {
	Address       string
	HelloHostname string
}

// MailConfig represents the mail configuration shared by inbox and outbox
type MailConfig struct {
	Sender string
	Gmail  GmailConfig
	SMTP   SMTPConfig
}

// EngineConfig represents the configuration for the downstream engine client
type EngineConfig struct {
	BaseURL string
	Timeout string
}

// SchedulerConfig represents the configuration for the polling loop
type SchedulerConfig struct {
	Interval    string
	BatchSize   int
	CallTimeout string
}

// CalendarConfig represents the configuration for the calendar client
type CalendarConfig struct {
	ID            string
	EventLocation string
}

// GetServer returns the server configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		ListenAddress: c.GetString("server.listen_address"),
	}
}

// GetMail returns the mail configuration
func (c *Config) GetMail() MailConfig {
	return MailConfig{
		Sender: c.GetString("mail.sender"),
		Gmail: GmailConfig{
			User:            c.GetString("mail.gmail.user"),
			CredentialsFile: c.GetString("mail.gmail.credentials_file"),
			TokenFile:       c.GetString("mail.gmail.token_file"),
			Label:           c.GetString("mail.gmail.label"),
		},
		SMTP: SMTPConfig{
			Address:       c.GetString("mail.smtp.address"),
			HelloHostname: c.GetString("mail.smtp.hello_hostname"),
		},
	}
}

// GetEngine returns the engine client configuration
func (c *Config) GetEngine() EngineConfig {
	return EngineConfig{
		BaseURL: c.GetString("engine.base_url"),
		Timeout: c.GetString("engine.timeout"),
	}
}

// GetScheduler returns the polling loop configuration
func (c *Config) GetScheduler() SchedulerConfig {
	return SchedulerConfig{
		Interval:    c.GetString("scheduler.interval"),
		BatchSize:   c.GetInt("scheduler.batch_size"),
		CallTimeout: c.GetString("scheduler.call_timeout"),
	}
}

// GetCalendar returns the calendar configuration
func (c *Config) GetCalendar() CalendarConfig {
	return CalendarConfig{
		ID:            c.GetString("calendar.id"),
		EventLocation: c.GetString("calendar.event_location"),
	}
}
