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

// Package pcap writes captured 802.15.4 frames to PCAP files, either as raw
// DLT 195 (wpan) frames or in the wpan-tap format that carries channel and
// RSS metadata per frame.
package pcap

import (
	"encoding/binary"
	"math"
	"os"

	"github.com/pkg/errors"

	"github.com/openthread/ot-radiodrv/types"
)

type Format int

const (
	FormatOff Format = iota
	FormatWpan
	FormatWpanTap
)

// ParseFormat maps the config/console string to a Format.
func ParseFormat(s string) (Format, bool) {
	switch s {
	case "off":
		return FormatOff, true
	case "wpan":
		return FormatWpan, true
	case "wpan-tap":
		return FormatWpanTap, true
	default:
		return FormatOff, false
	}
}

const (
	dltIeee802154    = 195
	dltIeee802154Tap = 283

	magicNumber  = 0xA1B2C3D4
	versionMajor = 2
	versionMinor = 4

	fileHeaderSize  = 24
	frameHeaderSize = 16
	tapHeaderSize   = 28
)

// wpan-tap TLV types, per https://gitlab.com/exegin/ieee802-15-4-tap
const (
	tlvFcsType           = 0
	tlvRss               = 1
	tlvChannelAssignment = 3
)

// Frame is one captured PSDU with receive/transmit metadata.
type Frame struct {
	// TimestampUs is microseconds since the start of the capture.
	TimestampUs uint64
	Data        []byte
	Channel     types.ChannelId
	RssiDbm     int8
}

// File is an open capture file.
type File interface {
	AppendFrame(frame Frame) error
	Sync() error
	Close() error
}

// NewFile creates (truncating) a capture file in the given format.
func NewFile(filename string, format Format) (File, error) {
	var dlt uint32
	switch format {
	case FormatWpan:
		dlt = dltIeee802154
	case FormatWpanTap:
		dlt = dltIeee802154Tap
	default:
		return nil, errors.Errorf("invalid capture format: %d", format)
	}

	fd, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	f := &file{fd: fd, tap: format == FormatWpanTap}
	if err = f.writeFileHeader(dlt); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

type file struct {
	fd  *os.File
	tap bool
}

func (f *file) AppendFrame(frame Frame) error {
	if f.tap {
		return f.appendTap(frame)
	}

	var header [frameHeaderSize]byte
	putRecordHeader(header[:], frame.TimestampUs, uint32(len(frame.Data)))
	if _, err := f.fd.Write(header[:]); err != nil {
		return err
	}
	_, err := f.fd.Write(frame.Data)
	return err
}

func (f *file) appendTap(frame Frame) error {
	var header [frameHeaderSize + tapHeaderSize]byte
	putRecordHeader(header[:], frame.TimestampUs, uint32(len(frame.Data))+tapHeaderSize)

	n := frameHeaderSize
	header[n] = 0 // wpan-tap version
	header[n+1] = 0
	binary.LittleEndian.PutUint16(header[n+2:n+4], tapHeaderSize)
	n += 4
	n = putTlv(header[:], n, tlvFcsType, []byte{1}) // 1 == 16-bit FCS

	rss := make([]byte, 4)
	binary.LittleEndian.PutUint32(rss, math.Float32bits(float32(frame.RssiDbm)))
	n = putTlv(header[:], n, tlvRss, rss)

	ch := make([]byte, 3)
	binary.LittleEndian.PutUint16(ch, uint16(frame.Channel))
	ch[2] = 0 // channel page 0
	putTlv(header[:], n, tlvChannelAssignment, ch)

	if _, err := f.fd.Write(header[:]); err != nil {
		return err
	}
	_, err := f.fd.Write(frame.Data)
	return err
}

func (f *file) Sync() error {
	return f.fd.Sync()
}

func (f *file) Close() error {
	return f.fd.Close()
}

func (f *file) writeFileHeader(dlt uint32) error {
	var header [fileHeaderSize]byte
	binary.LittleEndian.PutUint32(header[:4], magicNumber)
	binary.LittleEndian.PutUint16(header[4:6], versionMajor)
	binary.LittleEndian.PutUint16(header[6:8], versionMinor)
	binary.LittleEndian.PutUint32(header[16:20], 256) // snaplen
	binary.LittleEndian.PutUint32(header[20:24], dlt)
	if _, err := f.fd.Write(header[:]); err != nil {
		return err
	}
	return f.fd.Sync()
}

func putRecordHeader(buf []byte, tsUs uint64, capturedLen uint32) {
	binary.LittleEndian.PutUint32(buf[:4], uint32(tsUs/1000000))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(tsUs%1000000))
	binary.LittleEndian.PutUint32(buf[8:12], capturedLen)
	binary.LittleEndian.PutUint32(buf[12:16], capturedLen)
}

// putTlv writes one wpan-tap TLV at idx, padding the value to a 4-byte
// boundary, and returns the index past it.
func putTlv(buf []byte, idx int, tlvType uint16, value []byte) int {
	padded := (len(value) + 3) &^ 3
	binary.LittleEndian.PutUint16(buf[idx:idx+2], tlvType)
	binary.LittleEndian.PutUint16(buf[idx+2:idx+4], uint16(len(value)))
	copy(buf[idx+4:], value)
	return idx + 4 + padded
}
