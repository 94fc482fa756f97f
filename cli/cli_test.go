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

package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openthread/ot-radiodrv/conf"
	"github.com/openthread/ot-radiodrv/hal/simradio"
	"github.com/openthread/ot-radiodrv/progctx"
	"github.com/openthread/ot-radiodrv/raal"
	"github.com/openthread/ot-radiodrv/types"
)

func parse(t *testing.T, line string) *Command {
	cmd := &Command{}
	require.NoError(t, ParseBytes([]byte(line), cmd), "parsing %q", line)
	return cmd
}

func TestParseRequests(t *testing.T) {
	assert.NotNil(t, parse(t, "sleep").Sleep)
	assert.NotNil(t, parse(t, "receive").Receive)
	assert.NotNil(t, parse(t, "rx").Receive)
	assert.NotNil(t, parse(t, "cca").Cca)
	assert.NotNil(t, parse(t, "carrier").Carrier)

	ed := parse(t, "ed 640").Ed
	require.NotNil(t, ed)
	assert.Equal(t, 640, ed.DurationUs)
	assert.NotNil(t, parse(t, "ed").Ed)
}

func TestParseTx(t *testing.T) {
	tx := parse(t, "tx 618841 aabb").Tx
	require.NotNil(t, tx)
	assert.Nil(t, tx.NoCca)
	assert.Equal(t, []string{"618841", "aabb"}, tx.Psdu)

	tx = parse(t, "tx nocca 418841aabb").Tx
	require.NotNil(t, tx)
	assert.NotNil(t, tx.NoCca)
}

func TestParseInject(t *testing.T) {
	in := parse(t, "inject 418841aabb").Inject
	require.NotNil(t, in)
	assert.Nil(t, in.Rssi)

	in = parse(t, "inject rssi 60 418841aabb").Inject
	require.NotNil(t, in)
	require.NotNil(t, in.Rssi)
	assert.Equal(t, 60, in.Rssi.Val)

	assert.NotNil(t, parse(t, "inject crc").Inject.Crc)
	assert.NotNil(t, parse(t, "inject filtered").Inject.Filtered)
}

func TestParseConfigCommands(t *testing.T) {
	ch := parse(t, "channel 15").Channel
	require.NotNil(t, ch)
	require.NotNil(t, ch.Ch)
	assert.Equal(t, 15, *ch.Ch)
	assert.Nil(t, parse(t, "channel").Channel.Ch)

	cfg := parse(t, "ccacfg either thr 80").CcaCfg
	require.NotNil(t, cfg)
	assert.Equal(t, "either", cfg.Mode)
	require.NotNil(t, cfg.Threshold)
	assert.Equal(t, 80, *cfg.Threshold)

	assert.Equal(t, "timeout", parse(t, "ackmode timeout").AckMode.Mode)
	assert.NotNil(t, parse(t, "ccabusy on").CcaBusy.OnOrOff.On)
	assert.Equal(t, 70, parse(t, "edlevel 70").EdLevel.Val)
	assert.Equal(t, "debug", parse(t, "log debug").LogLevel.Level)
}

func TestParseMisc(t *testing.T) {
	assert.NotNil(t, parse(t, "grant").Grant)
	assert.NotNil(t, parse(t, "revoke").Revoke)
	assert.NotNil(t, parse(t, "state").State)
	assert.NotNil(t, parse(t, "stats").Stats)
	assert.NotNil(t, parse(t, "bufs").Bufs)
	assert.NotNil(t, parse(t, "exit").Exit)

	p := parse(t, "pcap tap capture.pcap").Pcap
	require.NotNil(t, p)
	assert.Equal(t, "tap", p.Format)

	rel := parse(t, "release 1").Release
	require.NotNil(t, rel)
	require.NotNil(t, rel.Idx)
	assert.Equal(t, 1, *rel.Idx)

	h := parse(t, "help tx").Help
	require.NotNil(t, h)
	assert.Equal(t, "tx", h.HelpTopic)

	cmd := &Command{}
	assert.Error(t, ParseBytes([]byte("warp 9"), cmd))
}

func newTestRunner(t *testing.T) *CmdRunner {
	cr, err := NewCmdRunner(progctx.New(nil), conf.Default(), simradio.New(), raal.NewManual())
	require.NoError(t, err)
	return cr
}

func handle(t *testing.T, cr *CmdRunner, line string) string {
	var out bytes.Buffer
	require.NoError(t, cr.HandleCommand(line, &out))
	return out.String()
}

func TestRunnerReceiveAndInject(t *testing.T) {
	cr := newTestRunner(t)

	out := handle(t, cr, "receive")
	assert.Contains(t, out, "Done")
	assert.Equal(t, types.StateWaitingRxFrame, cr.driver.State())

	out = handle(t, cr, "inject rssi 60 418841aabb")
	assert.Contains(t, out, "<- frame 418841aabb")
	assert.Contains(t, out, "rssi -60")

	out = handle(t, cr, "bufs")
	assert.Contains(t, out, "held 0: 418841aabb")

	out = handle(t, cr, "release")
	assert.Contains(t, out, "Done")
}

func TestRunnerStateShowsSlot(t *testing.T) {
	cr := newTestRunner(t)

	out := handle(t, cr, "state")
	assert.Contains(t, out, "Sleep slot released")

	handle(t, cr, "receive")
	out = handle(t, cr, "state")
	assert.Contains(t, out, "WaitingRxFrame slot held")

	handle(t, cr, "revoke")
	out = handle(t, cr, "state")
	assert.Contains(t, out, "WaitingTimeslot slot released")
}

func TestRunnerTransmit(t *testing.T) {
	cr := newTestRunner(t)

	handle(t, cr, "receive")
	out := handle(t, cr, "tx 418841aabb")
	assert.Contains(t, out, "tx done 418841aabb")
	assert.Equal(t, types.StateWaitingRxFrame, cr.driver.State())

	handle(t, cr, "ccabusy on")
	out = handle(t, cr, "tx 418841aabb")
	assert.Contains(t, out, "tx failed: channel-access-failure")
}

func TestRunnerIllegalRequest(t *testing.T) {
	cr := newTestRunner(t)

	out := handle(t, cr, "sleep")
	assert.Contains(t, out, "Error")
	assert.Equal(t, types.StateSleep, cr.driver.State())
}

func TestRunnerEd(t *testing.T) {
	cr := newTestRunner(t)

	handle(t, cr, "edlevel 70")
	out := handle(t, cr, "ed 256")
	assert.Contains(t, out, "ed level -70 dBm")
	assert.Equal(t, types.StateWaitingRxFrame, cr.driver.State())
}

func TestHelp(t *testing.T) {
	h := newHelp()
	general := h.outputGeneralHelp()
	for _, cmd := range []string{"sleep", "receive", "tx", "ed", "cca", "carrier", "grant", "revoke", "pcap"} {
		assert.Contains(t, general, cmd)
		assert.NotContains(t, h.outputCommandHelp(cmd), "Non-existent")
	}
}
