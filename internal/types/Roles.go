package types

// Address identifies an account on the asset ledger.
type Address string

// String implements fmt.Stringer.
func (a Address) String() string {
	return string(a)
}

// Empty reports whether the address is unset.
func (a Address) Empty() bool {
	return a == ""
}

// RolesConfig holds the named role addresses of a vault.
// It is mutable only through the vault's governance-gated setters.
type RolesConfig struct {
	Governance Address `json:"governance"`
	Strategist Address `json:"strategist"`
	Keeper     Address `json:"keeper"`
	Guardian   Address `json:"guardian"`
	Treasury   Address `json:"treasury"`
	Rewards    Address `json:"rewards"` // Reward recipient for non-want emissions
}
