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
	"github.com/alecthomas/participle"
)

// noinspection GoStructTag
type Command struct {
	AckMode  *AckModeCmd  `  @@` //nolint
	Bufs     *BufsCmd     `| @@` //nolint
	Carrier  *CarrierCmd  `| @@` //nolint
	Cca      *CcaCmd      `| @@` //nolint
	CcaBusy  *CcaBusyCmd  `| @@` //nolint
	CcaCfg   *CcaCfgCmd   `| @@` //nolint
	Channel  *ChannelCmd  `| @@` //nolint
	Ed       *EdCmd       `| @@` //nolint
	EdLevel  *EdLevelCmd  `| @@` //nolint
	Exit     *ExitCmd     `| @@` //nolint
	Grant    *GrantCmd    `| @@` //nolint
	Help     *HelpCmd     `| @@` //nolint
	Inject   *InjectCmd   `| @@` //nolint
	LogLevel *LogLevelCmd `| @@` //nolint
	Pcap     *PcapCmd     `| @@` //nolint
	Receive  *ReceiveCmd  `| @@` //nolint
	Release  *ReleaseCmd  `| @@` //nolint
	Revoke   *RevokeCmd   `| @@` //nolint
	Sleep    *SleepCmd    `| @@` //nolint
	State    *StateCmd    `| @@` //nolint
	Stats    *StatsCmd    `| @@` //nolint
	Tx       *TxCmd       `| @@` //nolint
}

// noinspection GoStructTag
type SleepCmd struct {
	Cmd struct{} `"sleep"` //nolint
}

// noinspection GoStructTag
type ReceiveCmd struct {
	Cmd struct{} `("receive"|"rx")` //nolint
}

// TxCmd transmits a PSDU given as hex token(s), e.g. "tx 618841 aabb".
// noinspection GoStructTag
type TxCmd struct {
	Cmd   struct{}   `"tx"`               //nolint
	NoCca *NoCcaFlag `[ @@ ]`             //nolint
	Psdu  []string   `( @Ident | @Int )+` //nolint
}

// noinspection GoStructTag
type NoCcaFlag struct {
	Dummy struct{} `"nocca"` //nolint
}

// noinspection GoStructTag
type EdCmd struct {
	Cmd        struct{} `"ed"`     //nolint
	DurationUs int      `[ @Int ]` //nolint
}

// noinspection GoStructTag
type CcaCmd struct {
	Cmd struct{} `"cca"` //nolint
}

// noinspection GoStructTag
type CarrierCmd struct {
	Cmd struct{} `"carrier"` //nolint
}

// noinspection GoStructTag
type StateCmd struct {
	Cmd struct{} `"state"` //nolint
}

// noinspection GoStructTag
type StatsCmd struct {
	Cmd struct{} `"stats"` //nolint
}

// noinspection GoStructTag
type BufsCmd struct {
	Cmd struct{} `"bufs"` //nolint
}

// noinspection GoStructTag
type ChannelCmd struct {
	Cmd struct{} `"channel"` //nolint
	Ch  *int     `[ @Int ]`  //nolint
}

// CcaCfgCmd sets or shows the CCA configuration. The threshold is a
// magnitude in dBm below zero (thr 75 means -75 dBm).
// noinspection GoStructTag
type CcaCfgCmd struct {
	Cmd       struct{} `"ccacfg"`                              //nolint
	Mode      string   `[ @("ed"|"carrier"|"both"|"either") ]` //nolint
	Threshold *int     `[ "thr" @Int ]`                        //nolint
}

// InjectCmd simulates an incoming frame. The RSSI is a magnitude below zero
// (rssi 60 means -60 dBm) and precedes the PSDU hex token(s).
// noinspection GoStructTag
type InjectCmd struct {
	Cmd      struct{}      `"inject"`              //nolint
	Crc      *CrcFlag      `( @@`                  //nolint
	Filtered *FilteredFlag `| @@`                  //nolint
	Rssi     *RssiFlag     `| [ @@ ]`              //nolint
	Psdu     []string      `  ( @Ident | @Int )+)` //nolint
}

// noinspection GoStructTag
type CrcFlag struct {
	Dummy struct{} `"crc"` //nolint
}

// noinspection GoStructTag
type FilteredFlag struct {
	Dummy struct{} `"filtered"` //nolint
}

// noinspection GoStructTag
type RssiFlag struct {
	Val int `"rssi" @Int` //nolint
}

// noinspection GoStructTag
type AckModeCmd struct {
	Cmd  struct{} `"ackmode"`                //nolint
	Mode string   `@("ack"|"timeout"|"crc")` //nolint
}

// noinspection GoStructTag
type CcaBusyCmd struct {
	Cmd     struct{}    `"ccabusy"` //nolint
	OnOrOff OnOrOffFlag `@@`        //nolint
}

// EdLevelCmd scripts the simulated energy level, magnitude below zero.
// noinspection GoStructTag
type EdLevelCmd struct {
	Cmd struct{} `"edlevel"` //nolint
	Val int      `@Int`      //nolint
}

// noinspection GoStructTag
type GrantCmd struct {
	Cmd struct{} `"grant"` //nolint
}

// noinspection GoStructTag
type RevokeCmd struct {
	Cmd struct{} `"revoke"` //nolint
}

// ReleaseCmd returns a delivered buffer (by index, or the oldest) to the
// driver's pool.
// noinspection GoStructTag
type ReleaseCmd struct {
	Cmd struct{} `"release"` //nolint
	Idx *int     `[ @Int ]`  //nolint
}

// noinspection GoStructTag
type PcapCmd struct {
	Cmd    struct{} `"pcap"`                                    //nolint
	Format string   `@("off"|"wpan"|"tap")`                     //nolint
	File   []string `[ ( @String | @Ident | @Int | @"." )+ ]`   //nolint
}

// noinspection GoStructTag
type LogLevelCmd struct {
	Cmd   struct{} `"log"`                                              //nolint
	Level string   `[ @("trace"|"debug"|"info"|"warn"|"error"|"off") ]` //nolint
}

// noinspection GoStructTag
type HelpCmd struct {
	Cmd       struct{} `"help"`     //nolint
	HelpTopic string   `[ @Ident ]` //nolint
}

// noinspection GoStructTag
type ExitCmd struct {
	Cmd struct{} `"exit"` //nolint
}

// noinspection GoStructTag
type OnFlag struct {
	Dummy struct{} `"on"` //nolint
}

// noinspection GoStructTag
type OffFlag struct {
	Dummy struct{} `"off"` //nolint
}

// noinspection GoStructTag
type OnOrOffFlag struct {
	On  *OnFlag  `( @@`   //nolint
	Off *OffFlag `| @@ )` //nolint
}

var (
	commandParser = participle.MustBuild(&Command{})
)

func ParseBytes(b []byte, cmd *Command) error {
	err := commandParser.ParseBytes(b, cmd)
	return err
}
