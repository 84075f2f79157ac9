package session

import "math/rand"

// Tagger attaches a theme label to a session, given the finite
// label set parsed from the archive's topic preferences. The
// archive carries no signal linking a session's events to a
// topic, so tagging is pluggable: implementations are stand-ins
// until a real content-classification source exists.
type Tagger interface {
	Tag(s Session, themes []string) string
}

// ModuloTagger assigns themes round-robin by session ID. It is
// the default because it is deterministic: re-running the
// pipeline on the same input yields identical output.
type ModuloTagger struct{}

func (ModuloTagger) Tag(s Session, themes []string) string {
	if len(themes) == 0 {
		return ""
	}
	return themes[s.ID%len(themes)]
}

// RandomTagger picks an unweighted random theme per session.
// This is a demonstration baseline only; it ignores any
// relationship between the session's activity and the topic.
type RandomTagger struct {
	Rand *rand.Rand
}

func (t RandomTagger) Tag(s Session, themes []string) string {
	if len(themes) == 0 {
		return ""
	}
	return themes[t.Rand.Intn(len(themes))]
}

// ApplyThemes returns a copy of sessions tagged by the given
// tagger. With an empty theme list (or nil tagger) sessions stay
// untagged and theme-based aggregation becomes a no-op over the
// whole population.
func ApplyThemes(
	sessions []Session, themes []string, tagger Tagger,
) []Session {
	out := make([]Session, len(sessions))
	copy(out, sessions)
	if len(themes) == 0 || tagger == nil {
		return out
	}
	for i := range out {
		out[i].Theme = tagger.Tag(out[i], themes)
	}
	return out
}
