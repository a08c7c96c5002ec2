package usecases

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// PhraseWords is the number of words in a payment verification phrase.
const PhraseWords = 4

var phraseWordlist = [...]string{
	"amber", "anchor", "apple", "arrow", "atlas", "autumn", "badge", "bamboo",
	"banner", "basket", "beacon", "berry", "bison", "blade", "blossom", "border",
	"breeze", "bridge", "bronze", "bubble", "cabin", "cactus", "camera", "candle",
	"canyon", "carbon", "castle", "cedar", "chalk", "cherry", "cider", "circle",
	"citrus", "clover", "cobalt", "comet", "copper", "coral", "cotton", "crane",
	"crystal", "dagger", "daisy", "delta", "desert", "dragon", "dune", "eagle",
	"echo", "ember", "emerald", "engine", "falcon", "feather", "fern", "fiber",
	"flame", "forest", "fossil", "fox", "galaxy", "garden", "garnet", "ginger",
	"glacier", "globe", "granite", "gravel", "harbor", "hazel", "helmet", "heron",
	"honey", "horizon", "icicle", "indigo", "island", "ivory", "jacket", "jade",
	"jasmine", "jungle", "kettle", "kite", "lagoon", "lantern", "lemon", "lily",
	"linen", "lotus", "magnet", "mango", "maple", "marble", "meadow", "meteor",
	"mint", "mirror", "mosaic", "nectar", "nickel", "noble", "oak", "oasis",
	"ocean", "olive", "onyx", "orbit", "orchid", "otter", "paddle", "panda",
	"panther", "parrot", "pebble", "pepper", "pilot", "pine", "planet", "plaza",
	"pollen", "prairie", "prism", "pulse", "quartz", "quill", "rabbit", "radar",
	"raven", "reef", "ribbon", "ridge", "river", "rocket", "ruby", "saddle",
	"saffron", "sapphire", "satin", "shadow", "shell", "signal", "silver", "sketch",
	"spruce", "stone", "summit", "sunset", "tartan", "tango", "temple", "thunder",
	"tiger", "timber", "topaz", "torch", "tulip", "tundra", "turtle", "velvet",
	"violet", "voyage", "walnut", "willow", "window", "winter", "yarrow", "zephyr",
}

// GeneratePhrase returns n random lower-case words separated by single spaces.
func GeneratePhrase(n int) (string, error) {
	if n <= 0 {
		n = PhraseWords
	}
	max := big.NewInt(int64(len(phraseWordlist)))
	words := make([]string, n)
	for i := range words {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate phrase: %w", err)
		}
		words[i] = phraseWordlist[idx.Int64()]
	}
	return strings.Join(words, " "), nil
}

// PhraseMatches compares a typed phrase with the issued one, ignoring case
// and surrounding whitespace. Inner spacing must match exactly.
func PhraseMatches(issued, typed string) bool {
	issued = strings.TrimSpace(issued)
	return issued != "" && strings.EqualFold(issued, strings.TrimSpace(typed))
}
