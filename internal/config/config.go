package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL"`
	DatabaseURL string `env:"DATABASE_URL"`

	Stripe   Stripe   `envPrefix:"STRIPE_"`
	SMTP     SMTP     `envPrefix:"SMTP_"`
	Shipping Shipping `envPrefix:"SHIPPING_"`
	Auth     Auth     `envPrefix:"AUTH_"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

type Stripe struct {
	APIKey string `env:"API_KEY"`
}

type SMTP struct {
	Host           string `env:"HOST"`
	Port           string `env:"PORT" envDefault:"587"`
	From           string `env:"FROM"`
	AdminEmail     string `env:"ADMIN_EMAIL"`
	TimeoutSeconds int    `env:"TIMEOUT_SECONDS" envDefault:"10"`
}

type Shipping struct {
	ExpressSurcharge string `env:"EXPRESS_SURCHARGE" envDefault:"15.00"`
	DefaultCountry   string `env:"DEFAULT_COUNTRY" envDefault:"GB"`
}

type Auth struct {
	JWTSecret string `env:"JWT_SECRET"`
}
