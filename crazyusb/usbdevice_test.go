package crazyusb

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/gousb"
	"github.com/mikehamer/crazypilot/crtp"
)

func TestReadResultTimeoutIsEmptyAck(t *testing.T) {
	for _, err := range []error{context.DeadlineExceeded, gousb.TransferTimedOut, gousb.ErrorTimeout} {
		ack, resp, rerr := readResult(nil, err)
		if rerr != nil || !ack {
			t.Errorf("%v: ack=%v err=%v", err, ack, rerr)
		}
		if !crtp.IsEmptyAck(resp) {
			t.Errorf("%v: expected empty ack, got %X", err, resp)
		}
	}
}

func TestReadResultPassesPayload(t *testing.T) {
	ack, resp, err := readResult([]byte{0x00, 'o', 'k'}, nil)
	if err != nil || !ack {
		t.Fatalf("ack=%v err=%v", ack, err)
	}
	if !bytes.Equal(resp, []byte{0x00, 'o', 'k'}) {
		t.Errorf("resp = %X", resp)
	}
}

func TestReadResultError(t *testing.T) {
	boom := errors.New("pipe")
	ack, _, err := readResult(nil, boom)
	if ack || err != boom {
		t.Errorf("ack=%v err=%v", ack, err)
	}
}
