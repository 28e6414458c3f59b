package handler

import (
	"time"

	"cubemint/internal/sale/models"
	id "cubemint/pkg/domain"
)

type MintResponse struct {
	TokenIDs []id.TokenID `json:"token_ids"`
	Phase    string       `json:"phase"`
	Price    string       `json:"price"`
	Payment  string       `json:"payment"`
}

type SaleResponse struct {
	Administrator    string `json:"administrator"`
	Phase            string `json:"phase"`
	PublicPhaseStart string `json:"public_phase_start"`
	UnitPrice        string `json:"unit_price"`
	WhitelistRoot    string `json:"whitelist_root"`
	WhitelistEnabled bool   `json:"whitelist_enabled"`
	MetadataBase     string `json:"metadata_base"`
	FreeSupplyCap    uint64 `json:"free_supply_cap"`
	FreeMintedTotal  uint64 `json:"free_minted_total"`
	TotalSupply      uint64 `json:"total_supply"`
}

type TokenURIResponse struct {
	TokenID uint64 `json:"token_id"`
	URI     string `json:"uri"`
}

type BalanceResponse struct {
	Identity string `json:"identity"`
	Balance  uint64 `json:"balance"`
}

type ClaimResponse struct {
	Identity string `json:"identity"`
	Claimed  bool   `json:"claimed"`
}

func toMintResponse(res *models.MintResult) MintResponse {
	return MintResponse{
		TokenIDs: res.TokenIDs,
		Phase:    string(res.Phase),
		Price:    res.Price.String(),
		Payment:  res.Payment.String(),
	}
}

func toSaleResponse(snap *models.Snapshot) SaleResponse {
	cfg := snap.Config
	price := "0"
	if cfg.UnitPrice != nil {
		price = cfg.UnitPrice.String()
	}
	return SaleResponse{
		Administrator:    cfg.Administrator.String(),
		Phase:            string(snap.Phase),
		PublicPhaseStart: cfg.PublicPhaseStart.UTC().Format(time.RFC3339),
		UnitPrice:        price,
		WhitelistRoot:    cfg.WhitelistRoot.Hex(),
		WhitelistEnabled: cfg.WhitelistEnabled(),
		MetadataBase:     cfg.MetadataBase,
		FreeSupplyCap:    cfg.FreeSupplyCap,
		FreeMintedTotal:  snap.FreeMintedTotal,
		TotalSupply:      snap.TotalSupply,
	}
}
