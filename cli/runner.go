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

// Package cli implements the radiodbg console: it parses commands, drives
// the radio driver state machine, and scripts the simulated peripheral and
// time-slot arbiter.
package cli

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/openthread/ot-radiodrv/conf"
	"github.com/openthread/ot-radiodrv/fsm"
	"github.com/openthread/ot-radiodrv/hal/simradio"
	"github.com/openthread/ot-radiodrv/logger"
	"github.com/openthread/ot-radiodrv/pcap"
	"github.com/openthread/ot-radiodrv/progctx"
	"github.com/openthread/ot-radiodrv/raal"
	"github.com/openthread/ot-radiodrv/rxbuf"
	"github.com/openthread/ot-radiodrv/types"
)

// CmdRunner executes console commands against one driver instance. It is
// also the driver's Client, printing upward notifications as they arrive.
type CmdRunner struct {
	ctx     *progctx.ProgCtx
	cfg     *conf.Config
	driver  *fsm.Driver
	radio   *simradio.Radio
	arbiter *raal.Manual
	help    Help

	mu      sync.Mutex
	out     io.Writer
	held    []*rxbuf.Buffer
	capture *pcap.Capture
	channel types.ChannelId
}

// NewCmdRunner builds a driver over the given peripheral and arbiter, with
// the console as its client, and initializes it.
func NewCmdRunner(ctx *progctx.ProgCtx, cfg *conf.Config,
	radio *simradio.Radio, arbiter *raal.Manual) (*CmdRunner, error) {
	cr := &CmdRunner{
		ctx:     ctx,
		cfg:     cfg,
		radio:   radio,
		arbiter: arbiter,
		help:    newHelp(),
		channel: cfg.Channel,
	}
	cr.driver = fsm.New(cfg, radio, arbiter, cr)
	arbiter.SetListener(cr.driver)
	cr.driver.AttachEventSource(radio.Events())
	if err := cr.driver.Init(); err != nil {
		return nil, err
	}
	radio.SetTxHook(cr.onTransmitted)
	return cr, nil
}

// Driver exposes the console's driver instance.
func (cr *CmdRunner) Driver() *fsm.Driver {
	return cr.driver
}

func (cr *CmdRunner) GetPrompt() string {
	return fmt.Sprintf("%v> ", cr.driver.State())
}

// HandleCommand implements CliHandler. A command error is reported to the
// user, not returned, so the console keeps running.
func (cr *CmdRunner) HandleCommand(cmdline string, output io.Writer) error {
	cr.mu.Lock()
	cr.out = output
	cr.mu.Unlock()

	cmd := &Command{}
	if err := ParseBytes([]byte(cmdline), cmd); err != nil {
		cr.printf("Error: %v\n", err)
		return nil
	}
	if err := cr.execute(cmd); err != nil {
		cr.printf("Error: %v\n", err)
	} else {
		cr.printf("Done\n")
	}
	return nil
}

func (cr *CmdRunner) execute(cmd *Command) error {
	var err error
	switch {
	case cmd.Sleep != nil:
		err = cr.executeRequest("sleep", cr.driver.RequestSleep)
	case cmd.Receive != nil:
		err = cr.executeRequest("receive", cr.driver.RequestReceive)
	case cmd.Tx != nil:
		err = cr.executeTx(cmd.Tx)
	case cmd.Ed != nil:
		err = cr.executeEd(cmd.Ed)
	case cmd.Cca != nil:
		err = cr.executeRequest("cca", cr.driver.RequestCca)
	case cmd.Carrier != nil:
		err = cr.executeRequest("carrier", cr.driver.RequestContinuousCarrier)
	case cmd.State != nil:
		cr.executeState()
	case cmd.Stats != nil:
		cr.executeStats()
	case cmd.Bufs != nil:
		cr.executeBufs()
	case cmd.Channel != nil:
		err = cr.executeChannel(cmd.Channel)
	case cmd.CcaCfg != nil:
		err = cr.executeCcaCfg(cmd.CcaCfg)
	case cmd.Inject != nil:
		err = cr.executeInject(cmd.Inject)
	case cmd.AckMode != nil:
		cr.executeAckMode(cmd.AckMode)
	case cmd.CcaBusy != nil:
		cr.radio.SetCcaBusy(cmd.CcaBusy.OnOrOff.On != nil)
	case cmd.EdLevel != nil:
		cr.radio.SetEdLevel(int8(-cmd.EdLevel.Val))
	case cmd.Grant != nil:
		cr.arbiter.Grant()
		cr.drainEvents()
	case cmd.Revoke != nil:
		cr.arbiter.Revoke()
		cr.drainEvents()
	case cmd.Release != nil:
		err = cr.executeRelease(cmd.Release)
	case cmd.Pcap != nil:
		err = cr.executePcap(cmd.Pcap)
	case cmd.LogLevel != nil:
		err = cr.executeLogLevel(cmd.LogLevel)
	case cmd.Help != nil:
		cr.executeHelp(cmd.Help)
	case cmd.Exit != nil:
		cr.ctx.Cancel(nil)
	default:
		err = errors.New("unknown command")
	}
	return err
}

// executeRequest runs one parameterless transition request and pumps the
// completion events it may produce.
func (cr *CmdRunner) executeRequest(name string, request func() bool) error {
	if !request() {
		return errors.Errorf("%s not legal in state %v", name, cr.driver.State())
	}
	cr.drainEvents()
	return nil
}

func (cr *CmdRunner) executeTx(cmd *TxCmd) error {
	psdu, err := parsePsdu(cmd.Psdu)
	if err != nil {
		return err
	}
	if !cr.driver.RequestTransmit(psdu, cmd.NoCca == nil) {
		return errors.Errorf("tx not legal in state %v", cr.driver.State())
	}
	cr.drainEvents()
	return nil
}

func (cr *CmdRunner) executeEd(cmd *EdCmd) error {
	durationUs := uint32(cmd.DurationUs)
	if durationUs == 0 {
		durationUs = types.EdMinTimeUs
	}
	if !cr.driver.RequestEnergyDetection(durationUs) {
		return errors.Errorf("ed not legal in state %v", cr.driver.State())
	}
	cr.drainEvents()
	return nil
}

func (cr *CmdRunner) executeState() {
	slot := "released"
	if cr.arbiter.Holding() {
		slot = "held"
	}
	cr.printf("%v slot %s\n", cr.driver.State(), slot)
}

func (cr *CmdRunner) executeStats() {
	stats := cr.driver.GetStats()
	cr.printf("rx-frames    %d\n", stats.RxFrames)
	cr.printf("rx-errors    %d\n", stats.RxErrors)
	cr.printf("tx-frames    %d\n", stats.TxFrames)
	cr.printf("tx-acks      %d\n", stats.TxAcks)
	cr.printf("ack-timeouts %d\n", stats.AckTimeouts)
}

func (cr *CmdRunner) executeBufs() {
	cr.mu.Lock()
	held := make([]*rxbuf.Buffer, len(cr.held))
	copy(held, cr.held)
	cr.mu.Unlock()

	cr.printf("free %d\n", cr.driver.FreeBufferCount())
	for i, buf := range held {
		cr.printf("held %d: %s rssi %d lqi %d\n", i, hex.EncodeToString(buf.Frame()), buf.Rssi, buf.Lqi)
	}
}

func (cr *CmdRunner) executeChannel(cmd *ChannelCmd) error {
	if cmd.Ch == nil {
		cr.mu.Lock()
		ch := cr.channel
		cr.mu.Unlock()
		cr.printf("%d\n", ch)
		return nil
	}
	ch := types.ChannelId(*cmd.Ch)
	if ch < types.MinChannelNumber || ch > types.MaxChannelNumber {
		return errors.Errorf("channel %d out of range %d..%d", ch,
			types.MinChannelNumber, types.MaxChannelNumber)
	}
	cr.mu.Lock()
	cr.channel = ch
	cr.mu.Unlock()
	cr.driver.NotifyChannelChanged(ch)
	return nil
}

func (cr *CmdRunner) executeCcaCfg(cmd *CcaCfgCmd) error {
	if cmd.Mode == "" && cmd.Threshold == nil {
		cfg := cr.radio.CcaConfig()
		cr.printf("mode %v thr %d dBm\n", cfg.Mode, cfg.EdThresholdDbm)
		return nil
	}
	cfg := cr.radio.CcaConfig()
	switch cmd.Mode {
	case "":
	case "ed":
		cfg.Mode = types.CcaModeEd
	case "carrier":
		cfg.Mode = types.CcaModeCarrier
	case "both":
		cfg.Mode = types.CcaModeCarrierEd
	case "either":
		cfg.Mode = types.CcaModeCarrierOrEd
	}
	if cmd.Threshold != nil {
		cfg.EdThresholdDbm = int8(-*cmd.Threshold)
	}
	cr.driver.NotifyCcaConfigChanged(cfg)
	return nil
}

func (cr *CmdRunner) executeInject(cmd *InjectCmd) error {
	switch {
	case cmd.Crc != nil:
		if !cr.radio.InjectCrcError() {
			return errors.New("receiver not armed")
		}
	case cmd.Filtered != nil:
		if !cr.radio.InjectFilteredFrame() {
			return errors.New("receiver not armed")
		}
	default:
		psdu, err := parsePsdu(cmd.Psdu)
		if err != nil {
			return err
		}
		rssi := int8(-50)
		if cmd.Rssi != nil {
			rssi = int8(-cmd.Rssi.Val)
		}
		if !cr.radio.InjectFrame(psdu, rssi, 255) {
			return errors.New("receiver not armed, frame lost")
		}
	}
	cr.drainEvents()
	return nil
}

func (cr *CmdRunner) executeAckMode(cmd *AckModeCmd) {
	switch cmd.Mode {
	case "ack":
		cr.radio.SetAckBehavior(simradio.AckSuccess)
	case "timeout":
		cr.radio.SetAckBehavior(simradio.AckTimeout)
	case "crc":
		cr.radio.SetAckBehavior(simradio.AckCrcError)
	}
}

func (cr *CmdRunner) executeRelease(cmd *ReleaseCmd) error {
	cr.mu.Lock()
	if len(cr.held) == 0 {
		cr.mu.Unlock()
		return errors.New("no held buffers")
	}
	idx := 0
	if cmd.Idx != nil {
		idx = *cmd.Idx
	}
	if idx < 0 || idx >= len(cr.held) {
		cr.mu.Unlock()
		return errors.Errorf("no held buffer %d", idx)
	}
	buf := cr.held[idx]
	cr.held = append(cr.held[:idx], cr.held[idx+1:]...)
	cr.mu.Unlock()

	cr.driver.NotifyBufferReleased(buf)
	cr.drainEvents()
	return nil
}

func (cr *CmdRunner) executePcap(cmd *PcapCmd) error {
	cr.mu.Lock()
	old := cr.capture
	cr.capture = nil
	cr.mu.Unlock()
	if old != nil {
		if err := old.Close(); err != nil {
			logger.Errorf("closing capture: %v", err)
		}
	}
	if cmd.Format == "off" {
		return nil
	}

	format := pcap.FormatWpan
	if cmd.Format == "tap" {
		format = pcap.FormatWpanTap
	}
	filename := "radiodbg.pcap"
	if len(cmd.File) > 0 {
		filename = strings.Trim(strings.Join(cmd.File, ""), "\"")
	}
	f, err := pcap.NewFile(filename, format)
	if err != nil {
		return err
	}
	cr.mu.Lock()
	cr.capture = pcap.NewCapture(f)
	cr.mu.Unlock()
	cr.printf("capturing to %s\n", filename)
	return nil
}

func (cr *CmdRunner) executeLogLevel(cmd *LogLevelCmd) error {
	if cmd.Level == "" {
		cr.printf("%v\n", logger.GetLevel())
		return nil
	}
	lev, ok := logger.ParseLevel(cmd.Level)
	if !ok {
		return errors.Errorf("unknown log level %q", cmd.Level)
	}
	logger.SetLevel(lev)
	return nil
}

func (cr *CmdRunner) executeHelp(cmd *HelpCmd) {
	if cmd.HelpTopic == "" {
		cr.printf("%s", cr.help.outputGeneralHelp())
	} else {
		cr.printf("%s", cr.help.outputCommandHelp(cmd.HelpTopic))
	}
}

// drainEvents pumps queued peripheral events into the driver. Upward
// notifications print as a side effect (CmdRunner is the driver's Client).
func (cr *CmdRunner) drainEvents() {
	for cr.driver.PumpRadioEvents() > 0 {
	}
}

// fsm.Client implementation.

func (cr *CmdRunner) FrameReceived(buf *rxbuf.Buffer) {
	cr.mu.Lock()
	cr.held = append(cr.held, buf)
	capture := cr.capture
	ch := cr.channel
	cr.mu.Unlock()

	cr.printf("<- frame %s rssi %d lqi %d\n", hex.EncodeToString(buf.Frame()), buf.Rssi, buf.Lqi)
	if capture != nil {
		if err := capture.Add(buf.Frame(), ch, buf.Rssi); err != nil {
			logger.Errorf("capture: %v", err)
		}
	}
}

func (cr *CmdRunner) TransmitDone(psdu []byte) {
	cr.printf("-> tx done %s\n", hex.EncodeToString(psdu))
}

func (cr *CmdRunner) TransmitFailed(psdu []byte, err types.RadioError) {
	cr.printf("-> tx failed: %s\n", types.RadioErrorString(err))
}

func (cr *CmdRunner) EnergyDetected(levelDbm int8) {
	cr.printf("ed level %d dBm\n", levelDbm)
}

func (cr *CmdRunner) CcaDone(channelClear bool) {
	if channelClear {
		cr.printf("cca clear\n")
	} else {
		cr.printf("cca busy\n")
	}
}

// onTransmitted taps every PSDU the simulated radio sends (frames and ACKs)
// into the active capture.
func (cr *CmdRunner) onTransmitted(psdu []byte) {
	cr.mu.Lock()
	capture := cr.capture
	ch := cr.channel
	cr.mu.Unlock()
	if capture != nil {
		if err := capture.Add(psdu, ch, types.RssiInvalid); err != nil {
			logger.Errorf("capture: %v", err)
		}
	}
}

// Close releases console resources (the active capture).
func (cr *CmdRunner) Close() {
	cr.mu.Lock()
	capture := cr.capture
	cr.capture = nil
	cr.mu.Unlock()
	if capture != nil {
		if err := capture.Close(); err != nil {
			logger.Errorf("closing capture: %v", err)
		}
	}
}

func (cr *CmdRunner) printf(format string, args ...interface{}) {
	cr.mu.Lock()
	out := cr.out
	cr.mu.Unlock()
	if out == nil {
		return
	}
	_, _ = fmt.Fprintf(out, format, args...)
}

// parsePsdu decodes hex tokens (spaces between byte groups allowed) into a
// PSDU.
func parsePsdu(tokens []string) ([]byte, error) {
	s := strings.Join(tokens, "")
	psdu, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrapf(err, "bad PSDU hex %q", s)
	}
	if len(psdu) < types.ImmAckLenBytes || len(psdu) > types.MaxPsduLenBytes {
		return nil, errors.Errorf("PSDU length %d out of range %d..%d",
			len(psdu), types.ImmAckLenBytes, types.MaxPsduLenBytes)
	}
	return psdu, nil
}
