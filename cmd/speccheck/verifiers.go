package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/mahdiidarabi/eddsa-speccheck/pkg/speccheck"
)

var commandVerifiers = &cli.Command{
	Name:  "verifiers",
	Usage: "list registered verifiers",
	Action: func(ctx *cli.Context) error {
		vs, err := speccheck.DefaultRegistry().Lookup()
		if err != nil {
			return err
		}

		w := ctx.App.Writer
		for _, v := range vs {
			ref, ok := v.(*speccheck.ReferenceVerifier)
			if !ok {
				fmt.Fprintf(w, "%-24s external\n", v.Name())
				continue
			}
			p := ref.Policy()
			fmt.Fprintf(w, "%-24s %s, canonical A=%t R=%t, small-order A=%t R=%t, reserialized hash=%t\n",
				v.Name(), p.Equation, p.CanonicalA, p.CanonicalR, p.RejectSmallOrderA, p.RejectSmallOrderR, p.ReserializeHash)
		}
		return nil
	},
}
