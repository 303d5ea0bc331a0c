package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/agorafi/marketplace/adapters/store"
	"github.com/agorafi/marketplace/adapters/tokenizer"
	"github.com/agorafi/marketplace/core"
	"github.com/agorafi/marketplace/internal/eth"
	"github.com/agorafi/marketplace/service"
)

type apiFixture struct {
	router *gin.Engine
	auth   *service.AuthService
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	signKey, err := crypto.GenerateKey()
	require.NoError(t, err)

	repo := store.NewMemoryManager()
	t.Cleanup(func() { repo.Close() })

	auth := service.NewAuthService(store.NewMemoryNonceStore(), tokenizer.NewJWTTokenizer(signKey))
	marketplace := service.NewMarketplace(repo)
	listings := service.NewListingService(repo, marketplace, nil)
	offers := service.NewOfferService(repo, marketplace, nil)
	spaces := service.NewSpaceService(repo, nil)

	return &apiFixture{
		router: SetupRouter(auth, listings, offers, spaces),
		auth:   auth,
	}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

// login walks the full nonce challenge for a fresh wallet and returns its
// address plus a session token.
func (f *apiFixture) login(t *testing.T) (string, string) {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()

	rec := f.do(t, http.MethodGet, "/auth/nonce?address="+address, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var nonceResp struct {
		Nonce string `json:"nonce"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &nonceResp))

	sig, err := eth.SignPersonal(core.FormatChallenge(nonceResp.Nonce), key)
	require.NoError(t, err)

	rec = f.do(t, http.MethodPost, "/auth/verify", "", gin.H{"address": address, "signature": sig})
	require.Equal(t, http.StatusOK, rec.Code)

	var verifyResp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verifyResp))
	require.NotEmpty(t, verifyResp.Token)

	return core.NormalizeWallet(address), verifyResp.Token
}

func decodeListing(t *testing.T, rec *httptest.ResponseRecorder) core.Listing {
	t.Helper()
	var listing core.Listing
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	return listing
}

func TestHealth(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok","service":"marketplace"}`, rec.Body.String())
}

func TestAuthNonceRequiresAddress(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/auth/nonce", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthVerifyWithoutNonceIs400(t *testing.T) {
	f := newAPIFixture(t)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()
	sig, err := eth.SignPersonal("anything", key)
	require.NoError(t, err)

	rec := f.do(t, http.MethodPost, "/auth/verify", "", gin.H{"address": address, "signature": sig})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "no nonce found")
}

func TestAuthVerifyBadSignatureIs401(t *testing.T) {
	f := newAPIFixture(t)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	intruder, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()

	rec := f.do(t, http.MethodGet, "/auth/nonce?address="+address, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var nonceResp struct {
		Nonce string `json:"nonce"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &nonceResp))

	sig, err := eth.SignPersonal(core.FormatChallenge(nonceResp.Nonce), intruder)
	require.NoError(t, err)

	rec = f.do(t, http.MethodPost, "/auth/verify", "", gin.H{"address": address, "signature": sig})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMutatingEndpointsRequireToken(t *testing.T) {
	f := newAPIFixture(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/listings"},
		{http.MethodPatch, "/listings/some-id"},
		{http.MethodDelete, "/listings/some-id"},
		{http.MethodPost, "/listings/some-id/purchase"},
		{http.MethodPost, "/offers"},
		{http.MethodPost, "/offers/some-id/accept"},
		{http.MethodPost, "/spaces"},
	} {
		rec := f.do(t, route.method, route.path, "", gin.H{})
		require.Equal(t, http.StatusUnauthorized, rec.Code, route.path)
	}

	rec := f.do(t, http.MethodPost, "/listings", "not-a-token", gin.H{})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListingLifecycleOverHTTP(t *testing.T) {
	f := newAPIFixture(t)
	seller, sellerToken := f.login(t)
	_, buyerToken := f.login(t)

	rec := f.do(t, http.MethodPost, "/listings", sellerToken, gin.H{
		"spaceId": "romania",
		"tokenId": 42,
		"price":   "0.15",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	listing := decodeListing(t, rec)
	require.Equal(t, seller, listing.SellerWallet)

	// Duplicate tile listing conflicts.
	rec = f.do(t, http.MethodPost, "/listings", buyerToken, gin.H{
		"spaceId": "romania",
		"tokenId": 42,
		"price":   "0.20",
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	// Non-seller cannot update.
	rec = f.do(t, http.MethodPatch, "/listings/"+listing.ID, buyerToken, gin.H{"price": "0.01"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPatch, "/listings/"+listing.ID, sellerToken, gin.H{"price": "0.20"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "0.20", decodeListing(t, rec).Price)

	// Purchase by the buyer.
	rec = f.do(t, http.MethodPost, "/listings/"+listing.ID+"/purchase", buyerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sold := decodeListing(t, rec)
	require.Equal(t, core.ListingStatusSold, sold.Status)

	// Updating a sold listing is an invalid state, not a forbidden one.
	rec = f.do(t, http.MethodPatch, "/listings/"+listing.ID, sellerToken, gin.H{"price": "0.25"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "can only update active listings")

	rec = f.do(t, http.MethodGet, "/listings/missing-id", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListingExpiryNullClearsOverHTTP(t *testing.T) {
	f := newAPIFixture(t)
	_, sellerToken := f.login(t)

	expiry := time.Now().UTC().Add(time.Hour).Format(time.RFC3339)
	rec := f.do(t, http.MethodPost, "/listings", sellerToken, gin.H{
		"spaceId":   "romania",
		"tokenId":   7,
		"price":     "0.15",
		"expiresAt": expiry,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	listing := decodeListing(t, rec)
	require.NotNil(t, listing.ExpiresAt)

	// An explicit null clears the expiry; an omitted field leaves it.
	req := httptest.NewRequest(http.MethodPatch, "/listings/"+listing.ID, bytes.NewReader([]byte(`{"expiresAt":null}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+sellerToken)
	raw := httptest.NewRecorder()
	f.router.ServeHTTP(raw, req)
	require.Equal(t, http.StatusOK, raw.Code)
	require.Nil(t, decodeListing(t, raw).ExpiresAt)

	// A body with no recognized fields is a validation error.
	rec = f.do(t, http.MethodPatch, "/listings/"+listing.ID, sellerToken, gin.H{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "no fields to update")
}

func TestOfferFlowOverHTTP(t *testing.T) {
	f := newAPIFixture(t)
	_, sellerToken := f.login(t)
	_, b1Token := f.login(t)
	b2, b2Token := f.login(t)

	rec := f.do(t, http.MethodPost, "/listings", sellerToken, gin.H{
		"spaceId": "romania",
		"tokenId": 42,
		"price":   "0.15",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	listing := decodeListing(t, rec)

	expiry := time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339)
	rec = f.do(t, http.MethodPost, "/offers", b1Token, gin.H{
		"listingId": listing.ID,
		"amount":    "0.06",
		"expiresAt": expiry,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var low core.Offer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &low))

	rec = f.do(t, http.MethodPost, "/offers", b2Token, gin.H{
		"listingId": listing.ID,
		"amount":    "0.08",
		"expiresAt": expiry,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var high core.Offer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &high))

	// Sellers cannot bid on their own listing.
	rec = f.do(t, http.MethodPost, "/offers", sellerToken, gin.H{
		"listingId": listing.ID,
		"amount":    "0.05",
		"expiresAt": expiry,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Only the seller can accept; a bidder gets 403.
	rec = f.do(t, http.MethodPost, fmt.Sprintf("/offers/%s/accept", high.ID), b2Token, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPost, fmt.Sprintf("/offers/%s/accept", high.ID), sellerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var accepted core.Offer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accepted))
	require.Equal(t, core.OfferStatusAccepted, accepted.Status)

	// The cascade: listing sold to the accepted bidder, sibling rejected.
	rec = f.do(t, http.MethodGet, "/listings/"+listing.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sold := decodeListing(t, rec)
	require.Equal(t, core.ListingStatusSold, sold.Status)
	require.Equal(t, b2, *sold.BuyerWallet)

	rec = f.do(t, http.MethodGet, "/offers/"+low.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var rejected core.Offer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rejected))
	require.Equal(t, core.OfferStatusRejected, rejected.Status)
}

func TestSpaceEndpoints(t *testing.T) {
	f := newAPIFixture(t)
	owner, ownerToken := f.login(t)
	_, otherToken := f.login(t)

	rec := f.do(t, http.MethodPost, "/spaces", ownerToken, gin.H{
		"spaceId": "romania",
		"name":    "Romania",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPost, "/spaces", otherToken, gin.H{
		"spaceId": "romania",
		"name":    "Taken",
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPost, "/spaces/romania/tiles", ownerToken, gin.H{
		"tokenId":      42,
		"gridPosition": 7,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPost, "/spaces/romania/tiles", otherToken, gin.H{"tokenId": 43})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodGet, "/spaces/romania", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var info struct {
		SpaceID     string `json:"space_id"`
		OwnerWallet string `json:"owner_wallet"`
		TileCount   int    `json:"tile_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	require.Equal(t, "romania", info.SpaceID)
	require.Equal(t, owner, info.OwnerWallet)
	require.Equal(t, 1, info.TileCount)

	rec = f.do(t, http.MethodDelete, "/spaces/romania", ownerToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/spaces/romania", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
