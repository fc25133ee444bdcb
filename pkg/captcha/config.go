package captcha

import "time"

const DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

type Config struct {
	Secret    string        `env:"CAPTCHA_SECRET"`
	VerifyURL string        `env:"CAPTCHA_VERIFY_URL" envDefault:"https://www.google.com/recaptcha/api/siteverify"`
	Timeout   time.Duration `env:"CAPTCHA_TIMEOUT" envDefault:"10s"`
}
