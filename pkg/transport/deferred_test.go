package transport

import "testing"

func TestDeferredUnbound(t *testing.T) {
	d := &Deferred{}
	if ok, err := d.TryReceive(make([]byte, 4)); ok || err != nil {
		t.Fatalf("unbound receive: ok=%v err=%v", ok, err)
	}
	if err := d.Send([]byte{1}); err != ErrNotBound {
		t.Fatalf("err = %v, want ErrNotBound", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("close unbound: %v", err)
	}
}

func TestDeferredBind(t *testing.T) {
	d := &Deferred{}
	q := &queueLink{in: [][]byte{{0xAA, 0xBB}}}
	d.Bind(q)

	buf := make([]byte, 2)
	ok, err := d.TryReceive(buf)
	if err != nil || !ok || buf[0] != 0xAA {
		t.Fatalf("bound receive failed: ok=%v err=%v buf=% x", ok, err, buf)
	}
	if err := d.Send([]byte{1, 2}); err != nil {
		t.Fatalf("bound send: %v", err)
	}
	if len(q.out) != 1 {
		t.Fatalf("send did not reach the bound link")
	}
}

func TestDeferredRebindClosesOld(t *testing.T) {
	d := &Deferred{}
	first := &queueLink{}
	d.Bind(first)
	d.Bind(&queueLink{})
	if !first.closed {
		t.Fatalf("replaced link not closed")
	}
}
