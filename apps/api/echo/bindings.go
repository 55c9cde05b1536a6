package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.Ordering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.Ordering{Field: field, Ascending: !descending})
	}
}

// bindNullBool parses an optional boolean query param; absence stays null so
// that "not filtered" never collapses into "filtered on false".
func bindNullBool(ctx echo.Context, param string) null.Bool {
	val := ctx.QueryParam(param)
	if val == "" {
		return null.Bool{}
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return null.Bool{}
	}
	return null.BoolFrom(b)
}

// bindNullInt parses an optional integer query param; absence stays null.
func bindNullInt(ctx echo.Context, param string) null.Int {
	val := ctx.QueryParam(param)
	if val == "" {
		return null.Int{}
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return null.Int{}
	}
	return null.IntFrom(n)
}
