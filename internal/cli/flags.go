package cli

import (
	"github.com/spf13/cobra"
)

// Options holds the persistent flags shared by every command.
type Options struct {
	URL      string
	Secure   bool
	Port     int
	Verbose  bool
	NoPrompt bool
	Plain    bool
}

// GlobalFlags registers the persistent flags on root and returns the
// Options they are bound to.
func GlobalFlags(root *cobra.Command) *Options {
	opts := &Options{}
	f := root.PersistentFlags()
	f.StringVar(&opts.URL, "url", "", "Jenkins server URL (overrides config url and JENKINS_URL)")
	f.BoolVar(&opts.Secure, "secure", false, "Connect over HTTPS regardless of the URL scheme")
	f.IntVar(&opts.Port, "port", 0, "HTTPS port used with --secure (overrides config https-port)")
	f.BoolVarP(&opts.Verbose, "verbose", "v", false, "Log request diagnostics to stderr")
	f.BoolVar(&opts.NoPrompt, "no-prompt", false, "Print errors instead of prompting for recovery")
	f.BoolVar(&opts.Plain, "plain", false, "Use line-mode prompts instead of the full-screen dialog")
	return opts
}
