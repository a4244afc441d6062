// Package conn implements the Euphoria connection machine: one WebSocket
// framed as JSON packets, dual-layer liveness pings, command/reply
// correlation, and a mirrored room state.
package conn

import (
	"time"

	"github.com/zephyrnaut/euphoxide-go/api"
)

// SessionInfo describes one roster entry. It is Full when derived from a
// presence event or a who-reply, or Partial when derived only from a
// nick-change event observed without a preceding presence event.
type SessionInfo struct {
	Full    *api.SessionView
	Partial *api.NickEvent
}

func fullSessionInfo(v api.SessionView) SessionInfo {
	return SessionInfo{Full: &v}
}

func partialSessionInfo(n api.NickEvent) SessionInfo {
	return SessionInfo{Partial: &n}
}

// ID returns the user id of the session this entry describes.
func (s SessionInfo) ID() api.UserId {
	if s.Full != nil {
		return s.Full.ID
	}
	return s.Partial.ID
}

// SessionID returns the session id of the session this entry describes.
func (s SessionInfo) SessionID() api.SessionId {
	if s.Full != nil {
		return s.Full.SessionID
	}
	return s.Partial.SessionID
}

// Name returns the most recently observed display name of the session.
func (s SessionInfo) Name() string {
	if s.Full != nil {
		return s.Full.Name
	}
	return s.Partial.To
}

// Joining is the connection's state before both a HelloEvent and a
// SnapshotEvent have been observed.
type Joining struct {
	Since    time.Time
	Hello    *api.HelloEvent
	Snapshot *api.SnapshotEvent
	Bounce   *api.BounceEvent
}

func newJoining() Joining {
	return Joining{Since: time.Now()}
}

func (j *Joining) onData(data api.Data) {
	switch p := data.(type) {
	case *api.BounceEvent:
		j.Bounce = p
	case *api.HelloEvent:
		j.Hello = p
	case *api.SnapshotEvent:
		j.Snapshot = p
	}
}

// toJoined attempts the Joining -> Joined transition. It returns nil,false
// until both Hello and Snapshot have arrived.
func (j *Joining) toJoined() (*Joined, bool) {
	if j.Hello == nil || j.Snapshot == nil {
		return nil, false
	}

	session := j.Hello.Session
	if j.Snapshot.Nick != nil {
		session.Name = *j.Snapshot.Nick
	}

	listing := make(map[api.SessionId]SessionInfo, len(j.Snapshot.Listing))
	for _, s := range j.Snapshot.Listing {
		listing[s.SessionID] = fullSessionInfo(s)
	}

	return &Joined{
		Since:   time.Now(),
		Session: session,
		Account: j.Hello.Account,
		Listing: listing,
	}, true
}

// Joined is the connection's state once it has successfully joined the
// room: the client's own session, optional account, and the roster of all
// other sessions present.
type Joined struct {
	Since   time.Time
	Session api.SessionView
	Account *api.PersonalAccountView
	Listing map[api.SessionId]SessionInfo
}

func (j *Joined) onData(data api.Data) {
	switch p := data.(type) {
	case *api.JoinEvent:
		j.Listing[p.SessionID] = fullSessionInfo(p.SessionView)

	case *api.PartEvent:
		delete(j.Listing, p.SessionID)

	case *api.NetworkEvent:
		if p.Type != "partition" {
			return
		}
		for id, info := range j.Listing {
			if info.Full != nil {
				if info.Full.ServerID == p.ServerID && info.Full.ServerEra == p.ServerEra {
					delete(j.Listing, id)
				}
				continue
			}
			// Partial entries cannot be proven unaffected by the
			// partition, so they are dropped unconditionally.
			delete(j.Listing, id)
		}

	case *api.SendEvent:
		j.Listing[p.Sender.SessionID] = fullSessionInfo(p.Sender)

	case *api.NickEvent:
		if existing, ok := j.Listing[p.SessionID]; ok && existing.Full != nil {
			updated := *existing.Full
			updated.Name = p.To
			j.Listing[p.SessionID] = fullSessionInfo(updated)
			return
		}
		j.Listing[p.SessionID] = partialSessionInfo(*p)

	case *api.NickReply:
		if p.SessionID == j.Session.SessionID {
			j.Session.Name = p.To
		}

	case *api.WhoReply:
		j.Listing = make(map[api.SessionId]SessionInfo, len(p.Listing))
		for _, s := range p.Listing {
			if s.SessionID == j.Session.SessionID {
				j.Session = s
				continue
			}
			j.Listing[s.SessionID] = fullSessionInfo(s)
		}
	}
}

// State is the connection's room state, from the client's perspective: it
// begins Joining and transitions to Joined once both a HelloEvent and a
// SnapshotEvent have been observed.
type State struct {
	Joining *Joining
	Joined  *Joined
}

// NewState returns the state of a fresh connection that has not yet
// received any packets.
func NewState() State {
	j := newJoining()
	return State{Joining: &j}
}

// OnData updates the state with a newly-received packet's payload. It must
// be called for every packet received from the server, in order; skipping a
// packet may leave the state inconsistent.
func (s *State) OnData(data api.Data) {
	if s.Joining != nil {
		s.Joining.onData(data)
		if joined, ok := s.Joining.toJoined(); ok {
			s.Joining = nil
			s.Joined = joined
		}
		return
	}

	s.Joined.onData(data)
}

// Clone returns a deep-enough copy of the state suitable for handing to a
// caller: mutating the roster map of the returned value does not affect
// this one.
func (s State) Clone() State {
	out := State{}

	if s.Joining != nil {
		j := *s.Joining
		out.Joining = &j
		return out
	}

	joined := *s.Joined
	joined.Listing = make(map[api.SessionId]SessionInfo, len(s.Joined.Listing))
	for k, v := range s.Joined.Listing {
		joined.Listing[k] = v
	}
	out.Joined = &joined

	return out
}
