package games

import "fmt"

// Mode identifies one of the built-in couple games. The set is closed; the
// dispatcher switches over every value and adding a mode means extending the
// switch, not falling through to a default.
type Mode string

const (
	ModeTruthOrDare   Mode = "truth-or-dare"
	ModeCoupleQuiz    Mode = "couple-quiz"
	ModeMusicQuiz     Mode = "music-quiz"
	ModeDrawTogether  Mode = "draw-together"
	ModeMemeGenerator Mode = "meme-generator"
)

// Info describes a game for the games menu.
type Info struct {
	Mode    Mode   `json:"mode"`
	Title   string `json:"title"`
	Tagline string `json:"tagline"`
}

// ParseMode validates a game mode received over the wire.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeTruthOrDare, ModeCoupleQuiz, ModeMusicQuiz, ModeDrawTogether, ModeMemeGenerator:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown game mode %q", s)
}

// Modes returns every playable mode in menu order.
func Modes() []Mode {
	return []Mode{ModeTruthOrDare, ModeCoupleQuiz, ModeMusicQuiz, ModeDrawTogether, ModeMemeGenerator}
}

// Describe returns the menu entry for a mode. It is exhaustive over the Mode
// values and panics on anything else, which can only mean a missed case after
// adding a mode.
func Describe(mode Mode) Info {
	switch mode {
	case ModeTruthOrDare:
		return Info{Mode: mode, Title: "Truth or Dare", Tagline: "Take turns, no chickening out"}
	case ModeCoupleQuiz:
		return Info{Mode: mode, Title: "Couple Quiz", Tagline: "How well do you really know each other?"}
	case ModeMusicQuiz:
		return Info{Mode: mode, Title: "Music Quiz", Tagline: "Guess the song before the other does"}
	case ModeDrawTogether:
		return Info{Mode: mode, Title: "Draw Together", Tagline: "One canvas, two artists"}
	case ModeMemeGenerator:
		return Info{Mode: mode, Title: "Meme Generator", Tagline: "Turn your photos into inside jokes"}
	}
	panic(fmt.Sprintf("games: unhandled mode %q", mode))
}

// Menu returns the full games menu.
func Menu() []Info {
	modes := Modes()
	infos := make([]Info, 0, len(modes))
	for _, mode := range modes {
		infos = append(infos, Describe(mode))
	}
	return infos
}
