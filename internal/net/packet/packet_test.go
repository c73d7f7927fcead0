package packet

import (
	"testing"

	"go.uber.org/zap"
)

func TestWriterReaderFields(t *testing.T) {
	w := NewWriterWithOpcode(C_OPCODE_INPUT)
	w.WriteDU(77)
	w.WriteH(uint16(0xfff6)) // -10
	w.WriteQ(1 << 40)
	w.WriteS("hello")
	w.WriteC(ButtonJump | ButtonAbility)

	r := NewReader(w.Bytes())
	if r.Opcode() != C_OPCODE_INPUT {
		t.Fatalf("opcode = %#x", r.Opcode())
	}
	if v := r.ReadD(); v != 77 {
		t.Fatalf("ReadD = %d", v)
	}
	if v := int16(r.ReadH()); v != -10 {
		t.Fatalf("ReadH = %d", v)
	}
	if v := r.ReadQ(); v != 1<<40 {
		t.Fatalf("ReadQ = %d", v)
	}
	if v := r.ReadS(); v != "hello" {
		t.Fatalf("ReadS = %q", v)
	}
	if v := r.ReadC(); v != ButtonJump|ButtonAbility {
		t.Fatalf("ReadC = %d", v)
	}
	if r.Remaining() != 0 || r.Short() {
		t.Fatalf("remaining = %d short = %v", r.Remaining(), r.Short())
	}
	// Reads past the end yield zero values.
	if r.ReadD() != 0 || r.ReadS() != "" {
		t.Fatal("read past end returned data")
	}
	if !r.Short() {
		t.Fatal("read past end not reported")
	}
}

func TestCharsetRoundTrip(t *testing.T) {
	defer func() {
		if err := SetCharset("utf-8"); err != nil {
			t.Fatal(err)
		}
	}()

	for _, label := range []string{"utf-8", "big5"} {
		if err := SetCharset(label); err != nil {
			t.Fatalf("SetCharset(%s): %v", label, err)
		}
		w := NewWriter()
		w.WriteS("生物 chat")
		r := NewReader(append([]byte{0}, w.Bytes()...))
		if got := r.ReadS(); got != "生物 chat" {
			t.Fatalf("%s: ReadS = %q", label, got)
		}
	}
	if Charset() != "big5" {
		t.Fatalf("Charset = %q", Charset())
	}
	if err := SetCharset("no-such-charset"); err == nil {
		t.Fatal("unknown charset accepted")
	}
}

func TestRegistryGatesByState(t *testing.T) {
	reg := NewRegistry(zap.NewNop())
	var got []string
	reg.Register(C_OPCODE_CHAT, []SessionState{StateApproved}, func(_ any, r *Reader) {
		got = append(got, r.ReadS())
	})
	reg.Register(C_OPCODE_QUIT, []SessionState{StateHandshake, StateApproved}, func(any, *Reader) {
		panic("boom")
	})

	chat := NewWriterWithOpcode(C_OPCODE_CHAT)
	chat.WriteS("hi")
	if err := reg.Dispatch(nil, StateHandshake, chat.Bytes()); err == nil {
		t.Fatal("chat accepted before approval")
	}
	if err := reg.Dispatch(nil, StateApproved, chat.Bytes()); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "hi" {
		t.Fatalf("handled %v", got)
	}
	if err := reg.Dispatch(nil, StateApproved, []byte{0xee}); err != nil {
		t.Fatalf("unknown opcode: %v", err)
	}
	err := reg.Dispatch(nil, StateApproved, []byte{C_OPCODE_QUIT})
	if err == nil {
		t.Fatal("panic not reported")
	}
	if reg.Calls(C_OPCODE_CHAT) != 1 || reg.Calls(C_OPCODE_QUIT) != 1 || reg.Refused() != 1 {
		t.Fatalf("calls chat=%d quit=%d refused=%d", reg.Calls(C_OPCODE_CHAT), reg.Calls(C_OPCODE_QUIT), reg.Refused())
	}
	if OpcodeName(C_OPCODE_INPUT) != "C_INPUT" || OpcodeName(0xee) != "0xEE" {
		t.Fatalf("names: %s %s", OpcodeName(C_OPCODE_INPUT), OpcodeName(0xee))
	}
}
