// Copyright (c) 2026 Li Jinling. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package mc

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestReadRequest(t *testing.T) {
	for _, f := range []Frame{Frame3E, Frame4E} {
		first := EncodeRequest(DefaultSession(f), CommandBatchRead, SubCommandWord, []byte{1, 2, 3, 4, 5, 6})
		second := EncodeRequest(DefaultSession(f), CommandBatchWrite, SubCommandBit, []byte{7})
		r := bytes.NewReader(append(append([]byte{}, first...), second...))

		got, err := ReadRequest(r)
		if err != nil {
			t.Fatalf("%v: ReadRequest: %v", f, err)
		}
		if !bytes.Equal(got, first) {
			t.Errorf("%v: first frame = %X, want %X", f, got, first)
		}
		got, err = ReadRequest(r)
		if err != nil {
			t.Fatalf("%v: ReadRequest: %v", f, err)
		}
		if !bytes.Equal(got, second) {
			t.Errorf("%v: second frame = %X, want %X", f, got, second)
		}
		if _, err := ReadRequest(r); err != io.EOF {
			t.Errorf("%v: err = %v, want io.EOF", f, err)
		}
	}
}

func TestReadResponse(t *testing.T) {
	for _, f := range []Frame{Frame3E, Frame4E} {
		resp := EncodeResponse(DefaultSession(f), 0, []byte{0x34, 0x12})
		got, err := ReadResponse(bytes.NewReader(append(resp, 0xEE)))
		if err != nil {
			t.Fatalf("%v: ReadResponse: %v", f, err)
		}
		if !bytes.Equal(got, resp) {
			t.Errorf("%v: frame = %X, want %X", f, got, resp)
		}
	}

	if _, err := ReadResponse(bytes.NewReader([]byte{0x50, 0x00, 0x00})); !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("request subheader accepted as response: %v", err)
	}
	if _, err := ReadResponse(bytes.NewReader([]byte{0x50, 0x00, 0x00})); errors.Is(err, ErrIncompleteResponse) {
		t.Errorf("unknown subheader reported as incomplete: %v", err)
	}
	resp := EncodeResponse(DefaultSession(Frame3E), 0, []byte{0x34, 0x12})
	if _, err := ReadResponse(bytes.NewReader(resp[:len(resp)-1])); err != io.ErrUnexpectedEOF {
		t.Errorf("truncated frame: err = %v, want io.ErrUnexpectedEOF", err)
	}
}
