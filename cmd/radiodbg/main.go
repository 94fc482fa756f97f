// Copyright (c) 2024-2025, The OTNS Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.

// radiodbg is an interactive console around the 802.15.4 radio driver state
// machine, running it over a simulated peripheral and a scripted time-slot
// arbiter.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/openthread/ot-radiodrv/cli"
	"github.com/openthread/ot-radiodrv/conf"
	"github.com/openthread/ot-radiodrv/hal/simradio"
	"github.com/openthread/ot-radiodrv/logger"
	"github.com/openthread/ot-radiodrv/progctx"
	"github.com/openthread/ot-radiodrv/raal"
	"github.com/openthread/ot-radiodrv/types"
)

type mainArgs struct {
	ConfigFile string
	Channel    int
	LogLevel   string
	LogFile    string
	EchoInput  bool
}

func parseArgs() *mainArgs {
	args := &mainArgs{}
	flag.StringVar(&args.ConfigFile, "config", "", "YAML config file (default settings if omitted)")
	flag.IntVar(&args.Channel, "channel", 0, "override the startup channel (11..26)")
	flag.StringVar(&args.LogLevel, "log", "info", "set logging level: trace, debug, info, warn, error, off.")
	flag.StringVar(&args.LogFile, "logfile", "", "log to a file in addition to stderr")
	flag.BoolVar(&args.EchoInput, "echo", false, "echo console input (for scripted runs)")
	flag.Parse()
	return args
}

func main() {
	args := parseArgs()

	level, ok := logger.ParseLevel(args.LogLevel)
	if !ok {
		logger.Panicf("unknown log level %q", args.LogLevel)
	}
	logger.SetLevel(level)
	if args.LogFile != "" {
		logger.SetOutput([]string{"stderr", args.LogFile})
	}

	cfg := conf.Default()
	if args.ConfigFile != "" {
		var err error
		cfg, err = conf.Load(args.ConfigFile)
		logger.FatalIfError(err)
	}
	if args.Channel != 0 {
		cfg.Channel = types.ChannelId(args.Channel)
		logger.FatalIfError(cfg.Validate())
	}

	ctx := progctx.New(context.Background())
	handleSignals(ctx)

	radio := simradio.New()
	arbiter := raal.NewManual()
	cr, err := cli.NewCmdRunner(ctx, cfg, radio, arbiter)
	logger.FatalIfError(err)
	ctx.Defer(cr.Close)

	options := cli.DefaultCliOptions()
	options.EchoInput = args.EchoInput

	ctx.WaitAdd("cli", 1)
	err = cli.Run(cr, options)
	ctx.WaitDone("cli")
	ctx.Cancel(err)
	ctx.Wait()
}

func handleSignals(ctx *progctx.ProgCtx) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	signal.Ignore(syscall.SIGHUP)

	ctx.WaitAdd("handleSignals", 1)
	go func() {
		defer ctx.WaitDone("handleSignals")

		for {
			select {
			case sig := <-c:
				logger.Infof("signal received: %v", sig)
				ctx.Cancel(nil)
			case <-ctx.Done():
				return
			}
		}
	}()
}
