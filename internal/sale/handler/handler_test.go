package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"cubemint/internal/sale/handler/mocks"
	"cubemint/internal/sale/models"
	id "cubemint/pkg/domain"
	dErrors "cubemint/pkg/domain-errors"
	"cubemint/pkg/testutil"
)

var (
	admin = id.MustIdentity("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	alice = id.MustIdentity("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")

	testStart = time.Date(2022, 3, 8, 0, 0, 0, 0, time.UTC)
)

// =============================================================================
// Sale Handler Test Suite
// =============================================================================

type SaleHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
}

func TestSaleHandlerSuite(t *testing.T) {
	suite.Run(t, new(SaleHandlerSuite))
}

func (s *SaleHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	h := New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.router = chi.NewRouter()
	h.RegisterPublic(s.router)
	h.RegisterMint(s.router)
	h.RegisterAdmin(s.router)
}

func (s *SaleHandlerSuite) as(caller id.Identity, method, path string, body any) *http.Request {
	return testutil.WithCaller(testutil.NewJSONRequest(s.T(), method, path, body), caller)
}

func (s *SaleHandlerSuite) snapshot() *models.Snapshot {
	cfg := models.DefaultConfig(admin, testStart.Add(-models.DefaultPresaleDuration))
	return &models.Snapshot{Config: cfg, Phase: models.PhasePresale, FreeMintedTotal: 3, TotalSupply: 5}
}

// =============================================================================
// POST /mint
// =============================================================================

func (s *SaleHandlerSuite) TestMint() {
	proofHex := "0x" + strings.Repeat("11", 32)

	s.Run("requires a caller", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/mint", map[string]any{"quantity": 1}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, string(dErrors.CodeUnauthorized))
	})

	s.Run("passes parsed proof and payment to the service", func() {
		s.service.EXPECT().Mint(gomock.Any(), alice, gomock.Any()).
			DoAndReturn(func(_ any, _ id.Identity, req models.MintRequest) (*models.MintResult, error) {
				s.Equal(uint64(2), req.Quantity)
				s.Equal([]common.Hash{common.HexToHash(proofHex)}, req.Proof)
				s.Equal("12000000000000000", req.Payment.String())
				return &models.MintResult{
					TokenIDs: []id.TokenID{7, 8},
					Phase:    models.PhasePublic,
					Price:    big.NewInt(12_000_000_000_000_000),
					Payment:  req.Payment,
				}, nil
			})

		rr := testutil.DoRequest(s.router, s.as(alice, http.MethodPost, "/mint", map[string]any{
			"quantity": 2,
			"proof":    []string{proofHex},
			"payment":  "12000000000000000",
		}))
		s.Equal(http.StatusCreated, rr.Code)
		resp := testutil.UnmarshalResponse[MintResponse](s.T(), rr)
		s.Equal([]id.TokenID{7, 8}, resp.TokenIDs)
		s.Equal("public", resp.Phase)
		s.Equal("12000000000000000", resp.Price)
	})

	s.Run("malformed proof element is rejected", func() {
		rr := testutil.DoRequest(s.router, s.as(alice, http.MethodPost, "/mint", map[string]any{
			"quantity": 1,
			"proof":    []string{"0x1234"},
		}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})

	s.Run("negative payment is rejected", func() {
		rr := testutil.DoRequest(s.router, s.as(alice, http.MethodPost, "/mint", map[string]any{
			"quantity": 1,
			"payment":  "-1",
		}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})

	s.Run("oversized proof is rejected", func() {
		proof := make([]string, maxProofLen+1)
		for i := range proof {
			proof[i] = proofHex
		}
		rr := testutil.DoRequest(s.router, s.as(alice, http.MethodPost, "/mint", map[string]any{"quantity": 1, "proof": proof}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})

	s.Run("malformed JSON is a bad request", func() {
		rr := testutil.DoRequest(s.router, s.as(alice, http.MethodPost, "/mint", `{"quantity":`))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
	})

	rejections := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid quantity", models.ErrInvalidQuantity, http.StatusBadRequest},
		{"not whitelisted", models.ErrNotWhitelisted, http.StatusForbidden},
		{"already claimed", models.ErrAlreadyClaimed, http.StatusConflict},
		{"free supply exhausted", models.ErrFreeSupplyExhausted, http.StatusConflict},
		{"supply exhausted", models.ErrSupplyExhausted, http.StatusConflict},
		{"insufficient payment", models.ErrInsufficientPayment, http.StatusPaymentRequired},
		{"internal", dErrors.New(dErrors.CodeInternal, "db down"), http.StatusInternalServerError},
	}
	for _, tc := range rejections {
		s.Run("maps "+tc.name, func() {
			s.service.EXPECT().Mint(gomock.Any(), alice, gomock.Any()).Return(nil, tc.err)
			rr := testutil.DoRequest(s.router, s.as(alice, http.MethodPost, "/mint", map[string]any{"quantity": 1}))
			testutil.AssertStatusAndError(s.T(), rr, tc.status, string(dErrors.CodeOf(tc.err)))
		})
	}
}

// =============================================================================
// Reads
// =============================================================================

func (s *SaleHandlerSuite) TestGetSale() {
	s.service.EXPECT().Config(gomock.Any()).Return(s.snapshot(), nil)

	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/sale", nil))
	s.Equal(http.StatusOK, rr.Code)
	resp := testutil.UnmarshalResponse[SaleResponse](s.T(), rr)
	s.Equal(admin.String(), resp.Administrator)
	s.Equal("presale", resp.Phase)
	s.Equal("2022-03-08T00:00:00Z", resp.PublicPhaseStart)
	s.Equal("6000000000000000", resp.UnitPrice)
	s.False(resp.WhitelistEnabled)
	s.Equal("ipfs://", resp.MetadataBase)
	s.Equal(uint64(1000), resp.FreeSupplyCap)
	s.Equal(uint64(3), resp.FreeMintedTotal)
	s.Equal(uint64(5), resp.TotalSupply)
}

func (s *SaleHandlerSuite) TestTokenURI() {
	s.Run("existing token", func() {
		s.service.EXPECT().TokenURI(gomock.Any(), id.TokenID(42)).Return("ipfs://42", nil)
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/tokens/42/uri", nil))
		s.Equal(http.StatusOK, rr.Code)
		resp := testutil.UnmarshalResponse[TokenURIResponse](s.T(), rr)
		s.Equal("ipfs://42", resp.URI)
		s.Equal(uint64(42), resp.TokenID)
	})

	s.Run("unknown token", func() {
		s.service.EXPECT().TokenURI(gomock.Any(), id.TokenID(9)).Return("", models.ErrTokenNotFound)
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/tokens/9/uri", nil))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, string(dErrors.CodeNotFound))
	})

	s.Run("non-numeric id", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/tokens/abc/uri", nil))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeInvalidInput))
	})
}

func (s *SaleHandlerSuite) TestBalanceAndClaim() {
	s.service.EXPECT().BalanceOf(gomock.Any(), alice).Return(uint64(4), nil)
	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/balances/"+alice.String(), nil))
	s.Equal(http.StatusOK, rr.Code)
	s.Equal(uint64(4), testutil.UnmarshalResponse[BalanceResponse](s.T(), rr).Balance)

	s.service.EXPECT().HasClaimed(gomock.Any(), alice).Return(true, nil)
	rr = testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/claims/"+alice.String(), nil))
	s.Equal(http.StatusOK, rr.Code)
	s.True(testutil.UnmarshalResponse[ClaimResponse](s.T(), rr).Claimed)

	rr = testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodGet, "/claims/0x0000000000000000000000000000000000000000", nil))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeInvalidInput))
}

// =============================================================================
// Administrator setters
// =============================================================================

func (s *SaleHandlerSuite) TestSetters() {
	s.Run("public phase start", func() {
		s.service.EXPECT().SetPublicPhaseStart(gomock.Any(), admin, gomock.Any()).
			DoAndReturn(func(_ any, _ id.Identity, start time.Time) error {
				s.True(start.Equal(testStart), "offset is normalized, got %s", start)
				return nil
			})
		s.service.EXPECT().Config(gomock.Any()).Return(s.snapshot(), nil)
		rr := testutil.DoRequest(s.router, s.as(admin, http.MethodPut, "/admin/sale/public-phase-start",
			map[string]string{"timestamp": "2022-03-08T01:00:00+01:00"}))
		s.Equal(http.StatusOK, rr.Code)
	})

	s.Run("unit price", func() {
		s.service.EXPECT().SetUnitPrice(gomock.Any(), admin, big.NewInt(5)).Return(nil)
		s.service.EXPECT().Config(gomock.Any()).Return(s.snapshot(), nil)
		rr := testutil.DoRequest(s.router, s.as(admin, http.MethodPut, "/admin/sale/unit-price", map[string]string{"amount": "5"}))
		s.Equal(http.StatusOK, rr.Code)
	})

	s.Run("unit price is required", func() {
		rr := testutil.DoRequest(s.router, s.as(admin, http.MethodPut, "/admin/sale/unit-price", map[string]string{"amount": ""}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})

	s.Run("zero whitelist root disables", func() {
		s.service.EXPECT().SetWhitelistRoot(gomock.Any(), admin, common.Hash{}).Return(nil)
		s.service.EXPECT().Config(gomock.Any()).Return(s.snapshot(), nil)
		rr := testutil.DoRequest(s.router, s.as(admin, http.MethodPut, "/admin/sale/whitelist-root",
			map[string]string{"root": "0x" + strings.Repeat("0", 64)}))
		s.Equal(http.StatusOK, rr.Code)
	})

	s.Run("metadata base", func() {
		s.service.EXPECT().SetMetadataBase(gomock.Any(), admin, "ar://x/").Return(nil)
		s.service.EXPECT().Config(gomock.Any()).Return(s.snapshot(), nil)
		rr := testutil.DoRequest(s.router, s.as(admin, http.MethodPut, "/admin/sale/metadata-base", map[string]string{"base": "ar://x/"}))
		s.Equal(http.StatusOK, rr.Code)
	})

	s.Run("non-administrator is forbidden", func() {
		s.service.EXPECT().SetMetadataBase(gomock.Any(), alice, "x").Return(models.ErrUnauthorized)
		rr := testutil.DoRequest(s.router, s.as(alice, http.MethodPut, "/admin/sale/metadata-base", map[string]string{"base": "x"}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, string(dErrors.CodeForbidden))
	})

	s.Run("setters require a caller", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPut, "/admin/sale/unit-price", map[string]string{"amount": "1"}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, string(dErrors.CodeUnauthorized))
	})
}
