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

package pcap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWpanFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "test.pcap")
	f, err := NewFile(filename, FormatWpan)
	require.NoError(t, err)
	defer func() {
		_ = f.Close()
	}()

	require.NoError(t, f.Sync())
	assert.Equal(t, fileHeaderSize, getFileSize(t, filename))

	for i := 0; i < 10; i++ {
		frame := Frame{
			TimestampUs: uint64(i) * 1000,
			Data:        []byte{0x12, 0x10, 0xa6, 0x80, 0x65},
			Channel:     12,
			RssiDbm:     -60,
		}
		require.NoError(t, f.AppendFrame(frame))
		require.NoError(t, f.Sync())
		assert.Equal(t, fileHeaderSize+(frameHeaderSize+5)*(i+1), getFileSize(t, filename))
	}
}

func TestWpanTapFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "test_tap.pcap")
	f, err := NewFile(filename, FormatWpanTap)
	require.NoError(t, err)
	defer func() {
		_ = f.Close()
	}()

	require.NoError(t, f.Sync())
	assert.Equal(t, fileHeaderSize, getFileSize(t, filename))

	for i := 0; i < 10; i++ {
		frame := Frame{
			TimestampUs: uint64(i) * 1000,
			Data:        []byte{0x12, 0x10, 0x30, 0x3f, 0x94},
			Channel:     uint8(i + 11),
			RssiDbm:     int8(-60 + i),
		}
		require.NoError(t, f.AppendFrame(frame))
		require.NoError(t, f.Sync())
		assert.Equal(t, fileHeaderSize+(frameHeaderSize+tapHeaderSize+5)*(i+1), getFileSize(t, filename))
	}
}

func TestNewFileRejectsOff(t *testing.T) {
	_, err := NewFile(filepath.Join(t.TempDir(), "x.pcap"), FormatOff)
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	for s, want := range map[string]Format{"off": FormatOff, "wpan": FormatWpan, "wpan-tap": FormatWpanTap} {
		got, ok := ParseFormat(s)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok := ParseFormat("pcapng")
	assert.False(t, ok)
}

func TestCapture(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "cap.pcap")
	f, err := NewFile(filename, FormatWpan)
	require.NoError(t, err)

	c := NewCapture(f)
	require.NoError(t, c.Add([]byte{0x02, 0x00, 0x05, 0x00, 0x00}, 15, -50))
	require.NoError(t, c.Close())
	assert.Equal(t, fileHeaderSize+frameHeaderSize+5, getFileSize(t, filename))
}

func getFileSize(t *testing.T, fp string) int {
	info, err := os.Stat(fp)
	require.NoError(t, err)
	return int(info.Size())
}
