package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-logr/zapr"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	pingprobe "github.com/netprobe/go-pingprobe"
	"github.com/netprobe/go-pingprobe/netinfo"
)

// defaults are overridable through the environment (PINGPROBE_COUNT etc.)
// before flags are applied on top.
type defaults struct {
	Count    int           `envconfig:"COUNT" default:"4"`
	Timeout  time.Duration `envconfig:"TIMEOUT" default:"2500ms"`
	TTL      int           `envconfig:"TTL" default:"64"`
	Interval time.Duration `envconfig:"INTERVAL" default:"1s"`
}

func main() {
	var d defaults
	if err := envconfig.Process("pingprobe", &d); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	count := pflag.IntP("count", "c", d.Count, "number of echo requests to send")
	timeout := pflag.DurationP("timeout", "W", d.Timeout, "time to wait for each reply")
	ttl := pflag.IntP("ttl", "t", d.TTL, "IP time to live")
	interval := pflag.DurationP("interval", "i", d.Interval, "pause between attempts")
	debug := pflag.Bool("debug", false, "log unrelated icmp traffic")
	pflag.Parse()

	if pflag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <host>\n", os.Args[0])
		pflag.PrintDefaults()
		os.Exit(2)
	}
	target := pflag.Arg(0)

	var zl *zap.Logger
	var err error
	if *debug {
		zl, err = zap.NewDevelopment()
	} else {
		zl, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer zl.Sync()
	log := zapr.NewLogger(zl)

	if *debug {
		if names, err := netinfo.PhysicalInterfaceNames(); err == nil {
			log.V(1).Info("physical interfaces", "names", names)
		}
	}

	ctx := context.Background()
	addr, err := pingprobe.Resolve(ctx, target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", target, err)
		os.Exit(1)
	}
	name := pingprobe.ReverseResolve(ctx, addr)
	if name == "" {
		name = addr.String()
	}
	fmt.Printf("PING %s (%s)\n", addr, name)

	p := pingprobe.New()
	p.TTL = *ttl
	p.Timeout = *timeout
	p.Log = log.WithName("probe")

	exit := 0
	for i := 0; i < *count; i++ {
		if i > 0 {
			time.Sleep(*interval)
		}
		res := p.ProbeAddr(addr)
		switch res.Outcome {
		case pingprobe.Success:
			fmt.Printf("ping from %s: time=%.2fms\n", addr, float64(res.RTT.Microseconds())/1000.0)
		case pingprobe.TimedOut:
			fmt.Printf("ping from %s timed out, no response after %s\n", addr, *timeout)
			exit = 1
		default:
			fmt.Fprintf(os.Stderr, "ping to %s failed: %v\n", addr, res.Err)
			exit = 1
		}
	}
	os.Exit(exit)
}
