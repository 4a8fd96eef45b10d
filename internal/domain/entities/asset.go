package entities

import (
	"strings"
	"time"
)

// NativeAssetAddress is the sentinel contract address that marks an asset
// as the chain's native coin rather than an ERC-20 token.
const NativeAssetAddress = "0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee"

// AssetSymbol represents the symbol of an asset
type AssetSymbol string

const (
	AssetSymbolUSDC AssetSymbol = "USDC"
	AssetSymbolETH  AssetSymbol = "ETH"
	AssetSymbolDAI  AssetSymbol = "DAI"
	AssetSymbolEURe AssetSymbol = "EURe"
	AssetSymbolJPYC AssetSymbol = "JPYC"
)

// Asset represents a crypto asset/currency
type Asset struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Symbol          AssetSymbol `gorm:"uniqueIndex:idx_assets_symbol_chain;not null;size:10" json:"symbol"`
	Name            string      `gorm:"not null" json:"name"`
	Decimals        uint8       `gorm:"not null;default:18" json:"decimals"`
	ContractAddress string      `gorm:"size:42" json:"contract_address,omitempty"`
	ChainID         uint64      `gorm:"uniqueIndex:idx_assets_symbol_chain;not null;default:1" json:"chain_id"`
}

// TableName specifies the table name for Asset
func (Asset) TableName() string {
	return "assets"
}

// IsNative reports whether the asset is the chain's native coin. The check
// is case-insensitive since wallets disagree on address casing.
func (a Asset) IsNative() bool {
	return strings.EqualFold(a.ContractAddress, NativeAssetAddress)
}
