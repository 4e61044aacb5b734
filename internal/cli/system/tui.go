package system

import (
	"errors"
	"time"

	"github.com/julianstephens/habitgrid/internal/cli"
	"github.com/julianstephens/habitgrid/internal/tui"
)

// TuiCmd opens the interactive month grid
type TuiCmd struct{}

func (cmd *TuiCmd) Run(ctx *cli.Context) error {
	if !ctx.Interactive {
		return errors.New("the grid needs an interactive terminal, use 'habitgrid calendar' instead")
	}
	loc := ctx.TZ
	if loc == nil {
		loc = time.Local
	}
	return tui.Run(ctx.Ctx(), ctx.Store, loc)
}
