package api

import "time"

type Config struct {
	Addr           string        `envconfig:"ADDR" default:":8000"`
	UploadDir      string        `envconfig:"UPLOAD_DIR" split_words:"true" default:"data"`
	MaxUploadBytes int64         `envconfig:"MAX_UPLOAD_BYTES" split_words:"true" default:"33554432"`
	ReadTimeout    time.Duration `envconfig:"READ_TIMEOUT" split_words:"true" default:"30s"`
	WriteTimeout   time.Duration `envconfig:"WRITE_TIMEOUT" split_words:"true" default:"10m"`
}
