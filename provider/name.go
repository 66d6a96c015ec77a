package provider

// MaxSymbolLen bounds an event's registered wire name, terminator
// included. Mirrors the trace infrastructure's symbol length limit.
const MaxSymbolLen = 256

// BuildWireName constructs the name an event is registered and
// enablement-matched under: provider name, ':', event name, then one
// ";k<i>;" token per set keyword bit in ascending bit order.
//
// Names never fail to build. If provider+event would not leave room for
// at least one keyword token, the event-name portion is truncated and
// the returned flag is set — a programmer error worth an assertion at
// the call site, but the truncated name is still usable. Keyword tokens
// that no longer fit are dropped silently: they affect only name-based
// filtering by humans, the keyword bits themselves travel with the
// event record.
func BuildWireName(providerName, eventName string, keywords uint64) (string, bool) {
	truncated := false

	// Reserve room for ':' plus one ";k<i>;" token.
	if len(providerName)+len(eventName) > MaxSymbolLen-5 {
		truncated = true
		if len(providerName) > MaxSymbolLen-5 {
			providerName = providerName[:MaxSymbolLen-5]
		}
		eventName = eventName[:(MaxSymbolLen-5)-len(providerName)]
	}

	buf := make([]byte, 0, MaxSymbolLen-1)
	buf = append(buf, providerName...)
	buf = append(buf, ':')
	buf = append(buf, eventName...)

	if keywords != 0 {
		buf = append(buf, ';')
		for k := 0; keywords != 0; k++ {
			if keywords&1 != 0 {
				// Longest token is "k63;".
				if MaxSymbolLen-1-len(buf) < 4 {
					break
				}
				buf = append(buf, 'k')
				if k < 10 {
					buf = append(buf, byte('0'+k))
				} else {
					buf = append(buf, byte('0'+k/10), byte('0'+k%10))
				}
				buf = append(buf, ';')
			}
			keywords >>= 1
		}
	}

	return string(buf), truncated
}
