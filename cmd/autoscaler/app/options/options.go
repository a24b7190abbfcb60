package options

import (
	"github.com/spf13/pflag"

	"autoscaler/pkg/config"
)

// Options are the command line settings of the autoscaler. Flags that are
// left at their zero value keep whatever the config file or the defaults
// say.
type Options struct {
	ConfigFile    string
	Port          int
	EtcdEndpoints []string
	QueueHost     string
	QueuePort     string
	Debug         bool
}

func NewOptions() *Options {
	return &Options{}
}

func (o *Options) Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("autoscaler", pflag.ExitOnError)
	fs.StringVar(&o.ConfigFile, "config", "", "path to the yaml config file")
	fs.IntVar(&o.Port, "port", 0, "port of the management api")
	fs.StringSliceVar(&o.EtcdEndpoints, "etcd-endpoints", nil, "endpoints of the etcd cluster")
	fs.StringVar(&o.QueueHost, "queue-host", "", "host of the message queue")
	fs.StringVar(&o.QueuePort, "queue-port", "", "port of the message queue")
	fs.BoolVar(&o.Debug, "debug", false, "enable debug logging")
	return fs
}

// Config loads the config file and applies the flag overrides.
func (o *Options) Config() (*config.Config, error) {
	c, err := config.LoadFile(o.ConfigFile)
	if err != nil {
		return nil, err
	}
	if o.Port != 0 {
		c.Http.Port = o.Port
	}
	if len(o.EtcdEndpoints) > 0 {
		c.Etcd.Endpoints = o.EtcdEndpoints
	}
	if o.QueueHost != "" {
		c.Queue.Host = o.QueueHost
	}
	if o.QueuePort != "" {
		c.Queue.Port = o.QueuePort
	}
	if o.Debug {
		c.Debug = true
	}
	return c, nil
}
