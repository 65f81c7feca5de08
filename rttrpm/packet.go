package rttrpm

// TrackableGroup is one trackable and the sub-modules decoded under its
// scope. A trackable opens an addressing scope that lasts until the next
// trackable or end of packet; nested trackables are assumed not to occur
// (the source is silent on the case).
type TrackableGroup struct {
	Trackable  Trackable
	SubModules []Module
}

// Packet is a fully decoded RTTrP datagram: its header plus every trackable
// group found within the header's declared module count.
type Packet struct {
	Header     Header
	Trackables []TrackableGroup
}

// DecodePacket decodes an entire RTTrP datagram. It returns ok == false if
// the header reports a zero packet size (unrecognised integer signature, or
// too short a buffer) — per contract, callers must treat that as a no-op,
// not an error. A short or malformed module stream simply truncates the
// result; whatever trackables decoded cleanly are still returned with
// ok == true, since the header itself was valid.
func DecodePacket(data []byte) (Packet, bool) {
	h, pos := DecodeHeader(data, 0)
	if pos == 0 || h.GetPacketSize() == 0 {
		return Packet{}, false
	}

	pkt := Packet{Header: h}
	for i := 0; i < int(h.GetNumberOfModules()); i++ {
		m, newPos, ok := DecodeModule(data, pos, h)
		if !ok {
			break
		}
		pos = newPos

		tr, isTrackable := m.(Trackable)
		if !isTrackable {
			// The source's outer loop always expects a Trackable here; a
			// stream that doesn't provide one is treated as ended.
			break
		}

		group := TrackableGroup{Trackable: tr}
		for j := 0; j < tr.SubModuleCount; j++ {
			sub, subPos, ok := DecodeModule(data, pos, h)
			if !ok {
				break
			}
			pos = subPos
			group.SubModules = append(group.SubModules, sub)
		}
		pkt.Trackables = append(pkt.Trackables, group)
	}

	return pkt, true
}
