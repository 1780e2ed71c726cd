package protocol

import (
	"errors"
	"fmt"
	"math"

	"github.com/l1jgo/arena/internal/net/packet"
)

// MsgType is the leading type tag of every datagram.
type MsgType byte

const (
	MsgJoinRequest  MsgType = 1
	MsgJoinResponse MsgType = 2
	MsgInput        MsgType = 3
	MsgTickPacket   MsgType = 4
	MsgLobbyUpdate  MsgType = 5
	MsgLobbyAction  MsgType = 6
	MsgLeave        MsgType = 7
)

func (t MsgType) String() string {
	switch t {
	case MsgJoinRequest:
		return "JoinRequest"
	case MsgJoinResponse:
		return "JoinResponse"
	case MsgInput:
		return "Input"
	case MsgTickPacket:
		return "TickPacket"
	case MsgLobbyUpdate:
		return "LobbyUpdate"
	case MsgLobbyAction:
		return "LobbyAction"
	case MsgLeave:
		return "Leave"
	default:
		return fmt.Sprintf("Unknown(%d)", byte(t))
	}
}

var (
	ErrUnknownType  = errors.New("unknown message type")
	ErrUnknownEvent = errors.New("unknown event type")
	ErrEmpty        = errors.New("empty datagram")
	ErrTrailing     = errors.New("trailing bytes after message")
	ErrNonFinite    = errors.New("non-finite coordinate")
)

// Message is one wire message. Encode and Decode handle the fields after
// the type tag.
type Message interface {
	Type() MsgType
	Encode(w *packet.Writer)
	Decode(r *packet.Reader)
}

var factories = map[MsgType]func() Message{
	MsgJoinRequest:  func() Message { return &JoinRequest{} },
	MsgJoinResponse: func() Message { return &JoinResponse{} },
	MsgInput:        func() Message { return &Input{} },
	MsgTickPacket:   func() Message { return &TickPacket{} },
	MsgLobbyUpdate:  func() Message { return &LobbyUpdate{} },
	MsgLobbyAction:  func() Message { return &LobbyAction{} },
	MsgLeave:        func() Message { return &Leave{} },
}

// Marshal frames m as [type][fields...].
func Marshal(m Message) []byte {
	w := packet.NewWriterWithOpcode(byte(m.Type()))
	m.Encode(w)
	return w.Bytes()
}

// Unmarshal decodes one datagram. Unknown tags, short payloads and
// trailing garbage are all errors for that datagram only.
func Unmarshal(data []byte) (Message, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	t := MsgType(data[0])
	newMsg, ok := factories[t]
	if !ok {
		return nil, fmt.Errorf("tag %d: %w", data[0], ErrUnknownType)
	}
	m := newMsg()
	r := packet.NewReader(data[1:])
	m.Decode(r)
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", t, err)
	}
	if r.Remaining() != 0 {
		return nil, fmt.Errorf("decode %s: %d bytes: %w", t, r.Remaining(), ErrTrailing)
	}
	return m, nil
}

// JoinRequest asks for a player id. Re-sending it from the same endpoint
// returns the existing id.
type JoinRequest struct {
	Name     string
	Password string
	HeroID   string // optional pre-selection
}

func (*JoinRequest) Type() MsgType { return MsgJoinRequest }

func (m *JoinRequest) Encode(w *packet.Writer) {
	w.WriteS(m.Name)
	w.WriteS(m.Password)
	w.WriteS(m.HeroID)
}

func (m *JoinRequest) Decode(r *packet.Reader) {
	m.Name = r.ReadS()
	m.Password = r.ReadS()
	m.HeroID = r.ReadS()
}

type JoinResponse struct {
	Accepted    bool
	Reason      string
	PlayerID    uint32
	Team        uint8
	TickRate    uint16 // ticks per second
	ContentHash uint64
	MatchID     string
}

func (*JoinResponse) Type() MsgType { return MsgJoinResponse }

func (m *JoinResponse) Encode(w *packet.Writer) {
	w.WriteBool(m.Accepted)
	w.WriteS(m.Reason)
	w.WriteDU(m.PlayerID)
	w.WriteC(m.Team)
	w.WriteH(m.TickRate)
	w.WriteQ(m.ContentHash)
	w.WriteS(m.MatchID)
}

func (m *JoinResponse) Decode(r *packet.Reader) {
	m.Accepted = r.ReadBool()
	m.Reason = r.ReadS()
	m.PlayerID = r.ReadDU()
	m.Team = r.ReadC()
	m.TickRate = r.ReadH()
	m.ContentHash = r.ReadQ()
	m.MatchID = r.ReadS()
}

// InputFlags selects which commands an Input carries.
type InputFlags byte

const (
	InputMove InputFlags = 1 << iota
	InputCast
	InputStop
)

// Input is one client command frame. LastTick is the newest tick packet
// the client has received and doubles as the reliable-event ack.
type Input struct {
	Seq      uint32
	LastTick uint32
	Flags    InputFlags
	MoveX    float32
	MoveY    float32
	Slot     uint8
	TargetX  float32
	TargetY  float32
}

func (*Input) Type() MsgType { return MsgInput }

func (m *Input) Encode(w *packet.Writer) {
	w.WriteDU(m.Seq)
	w.WriteDU(m.LastTick)
	w.WriteC(byte(m.Flags))
	w.WriteF(m.MoveX)
	w.WriteF(m.MoveY)
	w.WriteC(m.Slot)
	w.WriteF(m.TargetX)
	w.WriteF(m.TargetY)
}

func (m *Input) Decode(r *packet.Reader) {
	m.Seq = r.ReadDU()
	m.LastTick = r.ReadDU()
	m.Flags = InputFlags(r.ReadC())
	m.MoveX = r.ReadF()
	m.MoveY = r.ReadF()
	m.Slot = r.ReadC()
	m.TargetX = r.ReadF()
	m.TargetY = r.ReadF()
	if !m.Finite() {
		r.Fail(fmt.Errorf("input seq %d: %w", m.Seq, ErrNonFinite))
	}
}

// Finite reports whether every coordinate of the input is a real number.
func (m *Input) Finite() bool {
	for _, f := range [...]float32{m.MoveX, m.MoveY, m.TargetX, m.TargetY} {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return false
		}
	}
	return true
}

func (m *Input) Has(f InputFlags) bool { return m.Flags&f != 0 }

// ComponentData is one serialized component inside an entity record.
type ComponentData struct {
	Kind uint8
	Data []byte
}

// EntityState is one entity's record in a tick packet.
type EntityState struct {
	EntityID   uint32
	EntityType uint8
	Archetype  string
	Tick       uint32
	Components []ComponentData
}

func (s *EntityState) encode(w *packet.Writer) {
	w.WriteDU(s.EntityID)
	w.WriteC(s.EntityType)
	w.WriteS(s.Archetype)
	w.WriteDU(s.Tick)
	w.WriteCount(len(s.Components))
	for _, c := range s.Components {
		w.WriteC(c.Kind)
		w.WriteBlob(c.Data)
	}
}

func (s *EntityState) decode(r *packet.Reader) {
	s.EntityID = r.ReadDU()
	s.EntityType = r.ReadC()
	s.Archetype = r.ReadS()
	s.Tick = r.ReadDU()
	n := r.ReadCount(1 + 4)
	s.Components = make([]ComponentData, 0, n)
	for i := 0; i < n; i++ {
		kind := r.ReadC()
		data := r.ReadBlob()
		s.Components = append(s.Components, ComponentData{Kind: kind, Data: data})
	}
}

// TickPacket is the per-tick server-to-client update.
type TickPacket struct {
	Tick   uint32
	States []EntityState
	Events []Event
}

func (*TickPacket) Type() MsgType { return MsgTickPacket }

func (m *TickPacket) Encode(w *packet.Writer) {
	w.WriteDU(m.Tick)
	w.WriteCount(len(m.States))
	for i := range m.States {
		m.States[i].encode(w)
	}
	w.WriteCount(len(m.Events))
	for _, ev := range m.Events {
		EncodeEvent(w, ev)
	}
}

func (m *TickPacket) Decode(r *packet.Reader) {
	m.Tick = r.ReadDU()
	n := r.ReadCount(4 + 1 + 1 + 4 + 4)
	m.States = make([]EntityState, n)
	for i := 0; i < n; i++ {
		m.States[i].decode(r)
	}
	n = r.ReadCount(1 + eventHeaderMinSize)
	m.Events = make([]Event, 0, n)
	for i := 0; i < n && r.Err() == nil; i++ {
		ev, err := DecodeEvent(r)
		if err != nil {
			return
		}
		m.Events = append(m.Events, ev)
	}
}

// LobbyPhase is the match phase broadcast with lobby updates.
type LobbyPhase uint8

const (
	PhaseLobby LobbyPhase = iota
	PhaseRunning
)

type LobbyPlayer struct {
	PlayerID uint32
	Name     string
	HeroID   string
	Ready    bool
	Team     uint8
}

type LobbyUpdate struct {
	Phase   LobbyPhase
	Players []LobbyPlayer
}

func (*LobbyUpdate) Type() MsgType { return MsgLobbyUpdate }

func (m *LobbyUpdate) Encode(w *packet.Writer) {
	w.WriteC(byte(m.Phase))
	w.WriteCount(len(m.Players))
	for _, p := range m.Players {
		w.WriteDU(p.PlayerID)
		w.WriteS(p.Name)
		w.WriteS(p.HeroID)
		w.WriteBool(p.Ready)
		w.WriteC(p.Team)
	}
}

func (m *LobbyUpdate) Decode(r *packet.Reader) {
	m.Phase = LobbyPhase(r.ReadC())
	n := r.ReadCount(4 + 1 + 1 + 1 + 1)
	m.Players = make([]LobbyPlayer, n)
	for i := range m.Players {
		p := &m.Players[i]
		p.PlayerID = r.ReadDU()
		p.Name = r.ReadS()
		p.HeroID = r.ReadS()
		p.Ready = r.ReadBool()
		p.Team = r.ReadC()
	}
}

type LobbyActionKind uint8

const (
	LobbySelectHero LobbyActionKind = iota + 1
	LobbySetReady
	LobbySetTeam
)

// LobbyAction mutates the sender's lobby state. Only the field matching
// Action is meaningful.
type LobbyAction struct {
	Action LobbyActionKind
	HeroID string
	Ready  bool
	Team   uint8
}

func (*LobbyAction) Type() MsgType { return MsgLobbyAction }

func (m *LobbyAction) Encode(w *packet.Writer) {
	w.WriteC(byte(m.Action))
	w.WriteS(m.HeroID)
	w.WriteBool(m.Ready)
	w.WriteC(m.Team)
}

func (m *LobbyAction) Decode(r *packet.Reader) {
	m.Action = LobbyActionKind(r.ReadC())
	m.HeroID = r.ReadS()
	m.Ready = r.ReadBool()
	m.Team = r.ReadC()
}

// Leave disconnects the sender.
type Leave struct{}

func (*Leave) Type() MsgType { return MsgLeave }

func (*Leave) Encode(*packet.Writer) {}

func (*Leave) Decode(*packet.Reader) {}
