// Package program holds the pure rules of the 365-day program: default day content, photo
// obligations, day completion and streaks. Nothing here performs I/O.
package program

import (
	"fmt"
	"math"
	"math/rand/v2"

	"akneDenikAPI/internal/types/daycontent"
)

var motivationTemplates = []string{
	"Den %d: každý malý krok se počítá. Tvoje pleť ti poděkuje.",
	"Den %d: trpělivost je tvoje superschopnost. Pokračuj!",
	"Den %d: zvládáš to skvěle, drž se své rutiny.",
	"Den %d: změna se neděje přes noc, ale děje se každý den.",
	"Den %d: buď na sebe dnes laskavá a pečuj o sebe.",
	"Den %d: dnešní péče je investice do zítřka.",
}

// Generator produces placeholder content for days without an authored record.
type Generator struct {
	pick func(n int) int
}

// NewGenerator returns a Generator drawing motivations with pick, which must return a value in
// [0, n). A nil pick uses math/rand.
func NewGenerator(pick func(n int) int) *Generator {
	if pick == nil {
		pick = rand.IntN
	}
	return &Generator{pick: pick}
}

// Generate never fails; two calls for the same day may pick different motivations.
func (g *Generator) Generate(day int) daycontent.DayContent {
	motivation := motivationTemplates[g.pick(len(motivationTemplates))]
	return daycontent.DayContent{
		Day:            day,
		Motivation:     fmt.Sprintf(motivation, day),
		Task:           seasonalTask(day),
		IsPhotoDay:     IsPhotoDay(day),
		IsDualPhotoDay: IsDualPhotoDay(day),
		Source:         daycontent.SourceGenerated,
	}
}

// IsPhotoDay is true on the first day and at the end of every week (7, 14, 21, ...). This
// replaces the older day%7 == 1 rule, so the first day of a week (8, 15, 22, ...) needs no photo.
func IsPhotoDay(day int) bool {
	return day == 1 || day%7 == 0
}

// IsDualPhotoDay is true at the end of every fourth week.
func IsDualPhotoDay(day int) bool {
	return day > 0 && day%28 == 0
}

// Month returns the 1-based program month of day.
func Month(day int) int {
	return int(math.Ceil(float64(day) / 30.44))
}

func seasonalTask(day int) string {
	switch m := Month(day); {
	case m <= 3:
		return fmt.Sprintf(`Den %d - budování základů
1. Ráno i večer jemně odliči a umyj pleť.
2. Nanes hydratační krém a nezapomeň na SPF.
3. Zapiš si, jak se tvoje pleť dnes cítí.`, day)
	case m <= 6:
		return fmt.Sprintf(`Den %d - upevňování návyků
1. Drž se své večerní rutiny i když jsi unavená.
2. Vypij alespoň 2 litry vody.
3. Všimni si, které potraviny tvé pleti nesedí.`, day)
	case m <= 9:
		return fmt.Sprintf(`Den %d - jemné doladění
1. Zkontroluj, že tvoje produkty stále dělají to, co mají.
2. Vyměň povlak na polštář.
3. Porovnej dnešní pleť s fotkou z minulého měsíce.`, day)
	default:
		return fmt.Sprintf(`Den %d - udržení výsledků
1. Pokračuj v rutině, která ti funguje.
2. Dopřej si dostatek spánku.
3. Oslav, jak daleko jsi došla.`, day)
	}
}
