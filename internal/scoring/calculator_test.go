package scoring

import (
	"testing"

	"github.com/ironsheep/faraway-scorer/internal/attributes"
	"github.com/ironsheep/faraway-scorer/internal/taxonomy"
	"github.com/smartystreets/goconvey/convey"
)

func TestCalculate(t *testing.T) {
	convey.Convey("Given the score calculator", t, func() {
		convey.Convey("When there is nothing on the table", func() {
			res := Calculate(nil, nil)

			convey.Convey("Then the score is zero and the trace is headers only", func() {
				convey.So(res.Score, convey.ShouldEqual, 0)
				convey.So(res.Details, convey.ShouldResemble, []string{
					CardsHeader,
					TemplesHeader,
					Separator,
					"TOTAL SCORE: 0",
				})
			})
		})

		convey.Convey("When two plain cards are placed", func() {
			cards := []attributes.Record{{Value: 2}, {Value: 3}}
			res := Calculate(cards, nil)

			convey.Convey("Then their values add up", func() {
				convey.So(res.Score, convey.ShouldEqual, 5)
			})

			convey.Convey("And the rightmost card is traced first", func() {
				convey.So(res.Details, convey.ShouldResemble, []string{
					CardsHeader,
					"[Card 2]",
					" -> Base score: 3pts",
					"[Card 1]",
					" -> Base score: 2pts",
					TemplesHeader,
					Separator,
					"TOTAL SCORE: 5",
				})
			})
		})

		convey.Convey("When a card requires a gem shown by a temple", func() {
			cards := []attributes.Record{{Value: 4, Conditions: []string{"condition_gem"}}}
			temples := []attributes.Record{{Options: []string{"gem"}}}
			res := Calculate(cards, temples)

			convey.Convey("Then the condition is met and the card scores", func() {
				convey.So(res.Score, convey.ShouldEqual, 4)
				convey.So(res.Details, convey.ShouldContain, " -> Condition: gem (required: 1, available: 1)")
				convey.So(res.Details, convey.ShouldNotContain, " -> Conditions not met. Value cancelled.")
			})
		})

		convey.Convey("When a card multiplies by visible blue cards", func() {
			cards := []attributes.Record{
				{Value: 2, Multiplier: "each_blue"},
				{Color: "card_blue"},
				{Color: "card_blue"},
			}
			res := Calculate(cards, nil)

			convey.Convey("Then each blue card to its right counts", func() {
				convey.So(res.Score, convey.ShouldEqual, 4)
				convey.So(res.Details, convey.ShouldContain, " -> Multiplier (each_blue): 2 x 2 = 4pts")
			})
		})

		convey.Convey("When the multiplier card is rightmost", func() {
			cards := []attributes.Record{
				{Color: "card_blue"},
				{Color: "card_blue"},
				{Value: 2, Multiplier: "each_blue"},
			}
			res := Calculate(cards, nil)

			convey.Convey("Then it cannot see the cards to its left", func() {
				convey.So(res.Score, convey.ShouldEqual, 0)
				convey.So(res.Details, convey.ShouldContain, " -> Multiplier (each_blue): 2 x 0 = 0pts")
			})
		})

		convey.Convey("When a card has several unmet conditions", func() {
			cards := []attributes.Record{{
				Value:      9,
				Multiplier: "each_gem",
				Conditions: []string{"condition_thistle", "condition_gem", "condition_thistle", "condition_chimera"},
			}}
			temples := []attributes.Record{{Options: []string{"gem"}}}
			res := Calculate(cards, temples)

			convey.Convey("Then every target is traced in first-seen order", func() {
				convey.So(res.Details[:7], convey.ShouldResemble, []string{
					CardsHeader,
					"[Card 1]",
					" -> Condition: thistle (required: 2, available: 0)",
					" -> Condition: gem (required: 1, available: 1)",
					" -> Condition: chimera (required: 1, available: 0)",
					" -> Conditions not met. Value cancelled.",
					" -> Base score: 0pts",
				})
			})

			convey.Convey("And the value and multiplier are cancelled", func() {
				convey.So(res.Score, convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When a condition needs a color", func() {
			cards := []attributes.Record{
				{Value: 5, Conditions: []string{"condition_card_red"}},
				{Color: "card_red"},
			}
			res := Calculate(cards, nil)

			convey.Convey("Then cards to the right satisfy it", func() {
				convey.So(res.Score, convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When temples are scored", func() {
			cards := []attributes.Record{
				{Color: "card_red", Options: []string{"night"}},
				{Color: "card_yellow", Options: []string{"night"}},
				{Color: "card_green"},
			}
			temples := []attributes.Record{
				{Value: 2, Multiplier: "each_red_or_yellow"},
				{Value: 1, Multiplier: "each_night", Options: []string{"night"}},
				{Value: 3},
			}
			res := Calculate(cards, temples)

			convey.Convey("Then each sees all cards but no other temple", func() {
				convey.So(res.Details, convey.ShouldContain, " -> Multiplier (each_red_or_yellow): 2 x 2 = 4pts")
				convey.So(res.Details, convey.ShouldContain, " -> Multiplier (each_night): 1 x 2 = 2pts")
				convey.So(res.Score, convey.ShouldEqual, 9)
			})

			convey.Convey("And temples are traced in order after the cards", func() {
				n := len(res.Details)
				convey.So(res.Details[n-9:], convey.ShouldResemble, []string{
					TemplesHeader,
					"[Temple 1]",
					" -> Multiplier (each_red_or_yellow): 2 x 2 = 4pts",
					"[Temple 2]",
					" -> Multiplier (each_night): 1 x 2 = 2pts",
					"[Temple 3]",
					" -> Base score: 3pts",
					Separator,
					"TOTAL SCORE: 9",
				})
			})
		})

		convey.Convey("When a card counts all colors", func() {
			cards := []attributes.Record{
				{Value: 1, Multiplier: "each_all_colors"},
				{Color: "card_red"},
				{Color: "card_green"},
				{Color: "card_blue"},
			}
			temples := []attributes.Record{{Color: "card_yellow"}, {Color: "card_gray"}}
			res := Calculate(cards, temples)

			convey.Convey("Then gray objects are not counted", func() {
				convey.So(res.Score, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When the multiplier is unknown", func() {
			res := Calculate([]attributes.Record{{Value: 3, Multiplier: "each_unicorn"}, {Color: "card_red"}}, nil)

			convey.Convey("Then it counts nothing", func() {
				convey.So(res.Score, convey.ShouldEqual, 0)
				convey.So(res.Details, convey.ShouldContain, " -> Multiplier (each_unicorn): 3 x 0 = 0pts")
			})
		})

		convey.Convey("When a zero-value card has a multiplier", func() {
			res := Calculate([]attributes.Record{{Multiplier: "each_red"}, {Color: "card_red"}}, nil)

			convey.Convey("Then the base score is traced", func() {
				convey.So(res.Details, convey.ShouldContain, " -> Base score: 0pts")
			})
		})
	})
}

func TestCalculator_CustomTable(t *testing.T) {
	convey.Convey("Given a calculator with an extended multiplier table", t, func() {
		table := taxonomy.DefaultMultipliers()
		table["each_gray"] = []string{"card_gray"}
		calc := New(table)

		convey.Convey("When a card counts gray temples", func() {
			res := calc.Calculate(
				[]attributes.Record{{Value: 3, Multiplier: "each_gray"}},
				[]attributes.Record{{Color: "card_gray"}, {Color: "card_gray"}},
			)

			convey.Convey("Then the new tag is counted", func() {
				convey.So(res.Score, convey.ShouldEqual, 6)
			})
		})
	})
}

func TestCalculate_Deterministic(t *testing.T) {
	cards := []attributes.Record{
		{Color: "card_blue", Value: 4, Multiplier: "each_gem", Conditions: []string{"condition_gem"}, Options: []string{"gem"}},
		{Color: "card_red", Options: []string{"gem", "gem"}},
	}
	temples := []attributes.Record{{Options: []string{"gem"}}}

	first := Calculate(cards, temples)
	for i := 0; i < 20; i++ {
		again := Calculate(cards, temples)
		if again.Score != first.Score || len(again.Details) != len(first.Details) {
			t.Fatalf("run %d differs: %+v vs %+v", i, again, first)
		}
		for j := range first.Details {
			if again.Details[j] != first.Details[j] {
				t.Fatalf("run %d line %d: got %q, want %q", i, j, again.Details[j], first.Details[j])
			}
		}
	}
	// Duplicate options on one record count once: 4 x (1 temple + 1 card).
	if first.Score != 8 {
		t.Errorf("score: got %d, want 8", first.Score)
	}
}
