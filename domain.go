package tachyon

import "github.com/byt3forg3/tachyon/internal/constants"

// Domain separates otherwise-identical inputs hashed for different
// purposes, so Hash(data) and HashWithDomain(data, X) never collide.
type Domain = uint64

// Predefined domains. Generic is what Hash and HashSeeded use.
const (
	DomainGeneric         Domain = constants.DomainGeneric
	DomainFileChecksum    Domain = constants.DomainFileChecksum
	DomainKeyDerivation   Domain = constants.DomainKeyDerivation
	DomainMessageAuth     Domain = constants.DomainMessageAuth
	DomainDatabaseIndex   Domain = constants.DomainDatabaseIndex
	DomainContentAddressed Domain = constants.DomainContentAddressed
)

// CustomDomain derives an application-specific domain from a 16-bit id.
// The id space is disjoint from the predefined domains above and from the
// internal leaf/node domains the Merkle tree uses, so a custom domain can
// never be mistaken for either.
func CustomDomain(id uint16) Domain {
	return constants.CustomDomain(id)
}
