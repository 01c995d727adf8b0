package models

// Client holds what a handler needs to reach a node and sign on behalf of an account
type Client struct {
	Addr string `mapstructure:"addr"`
	Seed string `mapstructure:"seed"`
}
