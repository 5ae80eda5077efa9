package trader_test

import (
	"testing"

	"github.com/okian/traderheat/internal/domain/trader"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	Convey("Given free-text assignee values", t, func() {
		cases := map[string]string{
			"Smith (backup)2": "Smith",
			"Smith (2)1":      "Smith",
			"  Jones  ":       "Jones",
			"Jones12":         "Jones",
			"-":               trader.Unassigned,
			" - ":             trader.Unassigned,
			"-1":              trader.Unassigned,
			"(lead) Brown":    "Brown",
			"Lee (a) and (b)": "Lee",
			"Ng ٣":            "Ng",
			"":                "",
			"Unassigned":      trader.Unassigned,
			"O'Neil-Smith":    "O'Neil-Smith",
			"Kim (open":       "Kim (open",
		}

		for in, want := range cases {
			So(trader.Normalize(in), ShouldEqual, want)
		}
	})

	Convey("Given already normalized values", t, func() {
		inputs := []string{
			"Smith (backup)2", "-", "  Lee (x) ) (y ", "a) (b", "(1)", "Kim (open", "9 (x) 9", "\tTab\t",
		}

		Convey("Then normalizing again should not change them", func() {
			for _, in := range inputs {
				once := trader.Normalize(in)
				So(trader.Normalize(once), ShouldEqual, once)
			}
		})
	})
}
