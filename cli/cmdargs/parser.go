/*
Package cmdargs contains helpers parsing positional command arguments.
*/
package cmdargs

import (
	"fmt"

	"github.com/nspcc-dev/ledger-services/pkg/core/entity"
	"github.com/nspcc-dev/ledger-services/pkg/core/transaction"
	"github.com/urfave/cli"
)

// EnsureNone returns an error if there are any positional arguments present.
// It can be used to check for them in commands that don't accept arguments.
func EnsureNone(ctx *cli.Context) *cli.ExitError {
	if ctx.Args().Present() {
		return cli.NewExitError("additional arguments given while this command expects none", 1)
	}
	return nil
}

// GetIDFromContext parses the only positional argument as an entity ID in
// the "shard.realm.num" form.
func GetIDFromContext(ctx *cli.Context) (entity.ID, *cli.ExitError) {
	if ctx.NArg() != 1 {
		return entity.ID{}, cli.NewExitError("exactly one entity ID expected", 1)
	}
	id, err := entity.ParseID(ctx.Args().First())
	if err != nil {
		return entity.ID{}, cli.NewExitError(err, 1)
	}
	return id, nil
}

// GetFunctionalityFromContext parses the only positional argument as a
// functionality name.
func GetFunctionalityFromContext(ctx *cli.Context) (transaction.Functionality, *cli.ExitError) {
	if ctx.NArg() != 1 {
		return transaction.None, cli.NewExitError("exactly one functionality name expected", 1)
	}
	fn, err := transaction.ParseFunctionality(ctx.Args().First())
	if err != nil {
		return transaction.None, cli.NewExitError(fmt.Errorf("bad functionality: %w", err), 1)
	}
	return fn, nil
}
