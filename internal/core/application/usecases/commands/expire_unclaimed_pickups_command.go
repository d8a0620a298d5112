package commands

import (
	"errors"

	"ecolocker/internal/pkg/guard"
)

var ErrExpireUnclaimedPickupsCommandIsNotConstructed = errors.New(
	"ExpireUnclaimedPickupsCommand must be created via NewExpireUnclaimedPickupsCommand constructor",
)

// ExpireUnclaimedPickupsCommand triggers the PIN-expiry sweep.
type ExpireUnclaimedPickupsCommand struct {
	guard guard.ConstructorGuard
}

func NewExpireUnclaimedPickupsCommand() ExpireUnclaimedPickupsCommand {
	return ExpireUnclaimedPickupsCommand{guard: guard.NewConstructorGuard()}
}

func (c ExpireUnclaimedPickupsCommand) Validate() error {
	return c.guard.Validate(ErrExpireUnclaimedPickupsCommandIsNotConstructed)
}
