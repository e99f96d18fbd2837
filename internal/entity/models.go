package entity

import (
	"fmt"
	"time"

	"github.com/gabapcia/credwatch/internal/pkg/validator"
)

// Prehistoric marks identifiers and descriptive fields of records created
// for history that predates the first indexed block.
const Prehistoric = validator.Prehistoric

// CTypeIDPrefix prefixes the hash of a credential type to form its id.
const CTypeIDPrefix = "kilt:ctype:"

// BlockID renders a block height as the zero-padded id blocks are stored under.
func BlockID(height uint64) string {
	return fmt.Sprintf("%09d", height)
}

// Block records the hash and timestamp of every block an event was projected from.
type Block struct {
	ID        string    `json:"id"`
	Hash      string    `json:"hash"`
	Timestamp time.Time `json:"timeStamp"`
}

func (b Block) EntityKind() Kind { return KindBlock }
func (b Block) EntityID() string { return b.ID }

// CType is the aggregation record of a credential type.
type CType struct {
	ID                  string `json:"id" validate:"ctypeid"`
	Author              string `json:"author"`
	RegistrationBlockID string `json:"registrationBlockId"`
	Definition          string `json:"definition"`
	AttestationsCreated uint64 `json:"attestationsCreated"`
	AttestationsRevoked uint64 `json:"attestationsRevoked"`
	AttestationsRemoved uint64 `json:"attestationsRemoved"`
	ValidAttestations   uint64 `json:"validAttestations"`
	Placeholder         bool   `json:"placeholder"`
}

func (c CType) EntityKind() Kind { return KindCType }
func (c CType) EntityID() string { return c.ID }

// Attestation is an on-chain attestation of a claim hash. Removed is kept as
// an explicit flag so that stores can filter on it without null checks.
type Attestation struct {
	ID                string `json:"id"`
	ClaimHash         string `json:"claimHash"`
	CTypeID           string `json:"cTypeId"`
	IssuerID          string `json:"issuerId"`
	Payer             string `json:"payer"`
	Valid             bool   `json:"valid"`
	Removed           bool   `json:"removed"`
	CreationBlockID   string `json:"creationBlockId"`
	RevocationBlockID string `json:"revocationBlockId,omitempty"`
	RemovalBlockID    string `json:"removalBlockId,omitempty"`
	DelegationID      string `json:"delegationId,omitempty"`
	Placeholder       bool   `json:"placeholder"`
}

func (a Attestation) EntityKind() Kind { return KindAttestation }
func (a Attestation) EntityID() string { return a.ID }

// DID is a KILT decentralized identifier.
type DID struct {
	ID              string `json:"id"`
	Payer           string `json:"payer"`
	CreationBlockID string `json:"creationBlockId"`
	DeletionBlockID string `json:"deletionBlockId,omitempty"`
	Active          bool   `json:"active"`
	Web3NameID      string `json:"web3nameId,omitempty"`
	Placeholder     bool   `json:"placeholder"`
}

func (d DID) EntityKind() Kind { return KindDID }
func (d DID) EntityID() string { return d.ID }

// Web3Name is a human-readable name that DIDs can claim.
type Web3Name struct {
	ID     string `json:"id"`
	Banned bool   `json:"banned"`
}

func (w Web3Name) EntityKind() Kind { return KindWeb3Name }
func (w Web3Name) EntityID() string { return w.ID }

// Ownership is one period during which a DID held a web3 name.
type Ownership struct {
	ID             string `json:"id"`
	NameID         string `json:"nameId"`
	BearerID       string `json:"bearerId"`
	ClaimBlockID   string `json:"claimBlockId"`
	ReleaseBlockID string `json:"releaseBlockId,omitempty"`
	Released       bool   `json:"released"`
}

func (o Ownership) EntityKind() Kind { return KindOwnership }
func (o Ownership) EntityID() string { return o.ID }

// SanctionNature tells whether a sanction banned or unbanned a name.
type SanctionNature string

const (
	SanctionProhibition SanctionNature = "prohibition"
	SanctionPermission  SanctionNature = "permission"
)

// Sanction is one ban or unban of a web3 name.
type Sanction struct {
	ID                 string         `json:"id"`
	NameID             string         `json:"nameId"`
	Nature             SanctionNature `json:"nature"`
	EnforcementBlockID string         `json:"enforcementBlockId"`
}

func (s Sanction) EntityKind() Kind { return KindSanction }
func (s Sanction) EntityID() string { return s.ID }

// Chain is the CAIP-2 chain component of an asset DID.
type Chain struct {
	ID        string `json:"id"`
	Namespace string `json:"namespace"`
	Reference string `json:"reference"`
}

func (c Chain) EntityKind() Kind { return KindChain }
func (c Chain) EntityID() string { return c.ID }

// Asset is the CAIP-19 asset component of an asset DID.
type Asset struct {
	ID         string `json:"id"`
	Namespace  string `json:"namespace"`
	Reference  string `json:"reference"`
	Identifier string `json:"identifier,omitempty"`
}

func (a Asset) EntityKind() Kind { return KindAsset }
func (a Asset) EntityID() string { return a.ID }

// AssetDID identifies an asset on some chain, the subject of public credentials.
type AssetDID struct {
	ID          string `json:"id"`
	ChainID     string `json:"chainId"`
	AssetID     string `json:"assetId"`
	Placeholder bool   `json:"placeholder"`
}

func (a AssetDID) EntityKind() Kind { return KindAssetDID }
func (a AssetDID) EntityID() string { return a.ID }

// PublicCredential is a credential stored on chain about an asset DID.
type PublicCredential struct {
	ID           string `json:"id"`
	SubjectID    string `json:"subjectId"`
	Valid        bool   `json:"valid"`
	CTypeID      string `json:"cTypeId"`
	Claims       string `json:"claims"`
	IssuerID     string `json:"issuerId"`
	Payer        string `json:"payer"`
	DelegationID string `json:"delegationId,omitempty"`
	Placeholder  bool   `json:"placeholder"`
}

func (p PublicCredential) EntityKind() Kind { return KindPublicCredential }
func (p PublicCredential) EntityID() string { return p.ID }

// RulingNature is the change a ruling applied to a public credential.
type RulingNature string

const (
	RulingCreation    RulingNature = "creation"
	RulingRemoval     RulingNature = "removal"
	RulingRevocation  RulingNature = "revocation"
	RulingRestoration RulingNature = "restoration"
)

// Ruling is one entry of the history of a public credential.
type Ruling struct {
	ID            string       `json:"id"`
	CredentialID  string       `json:"credentialId"`
	Nature        RulingNature `json:"nature"`
	RulingBlockID string       `json:"rulingBlockId"`
}

func (r Ruling) EntityKind() Kind { return KindRuling }
func (r Ruling) EntityID() string { return r.ID }
