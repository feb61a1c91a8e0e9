package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"monadmons-arena/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormInventory struct {
	DB *gorm.DB
}

func NewGormInventory(db *gorm.DB) *GormInventory {
	return &GormInventory{DB: db}
}

func (s *GormInventory) GetOwnedCards(ctx context.Context, address string) ([]models.OwnedCard, error) {
	var cards []models.OwnedCard
	err := s.DB.WithContext(ctx).
		Where("owner_address = ?", NormalizeAddress(address)).
		Order("acquired_at DESC").
		Find(&cards).Error
	if err != nil {
		return nil, fmt.Errorf("fetch player cards: %w", err)
	}
	return cards, nil
}

func (s *GormInventory) InsertOwnedCard(ctx context.Context, cardID, owner string, via models.AcquiredVia) (models.OwnedCard, error) {
	oc := models.OwnedCard{
		ID:           uuid.NewString(),
		CardID:       cardID,
		OwnerAddress: NormalizeAddress(owner),
		AcquiredVia:  via,
		AcquiredAt:   time.Now().UTC(),
	}
	if err := s.DB.WithContext(ctx).Create(&oc).Error; err != nil {
		return models.OwnedCard{}, fmt.Errorf("insert owned card: %w", err)
	}
	return oc, nil
}

func (s *GormInventory) ReassignOwner(ctx context.Context, ownedCardID, from, to string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var oc models.OwnedCard
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND owner_address = ?", ownedCardID, NormalizeAddress(from)).
			First(&oc).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("reassign %s: %w", ownedCardID, ErrNotOwner)
			}
			return fmt.Errorf("reassign %s: %w", ownedCardID, err)
		}
		return tx.Model(&oc).
			Where("id = ?", oc.ID).
			Updates(map[string]interface{}{
				"owner_address": NormalizeAddress(to),
				"acquired_via":  string(models.AcquiredViaBattleWin),
				"acquired_at":   time.Now().UTC(),
			}).Error
	})
}

func (s *GormInventory) HasAnyCards(ctx context.Context, address string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.OwnedCard{}).
		Where("owner_address = ?", NormalizeAddress(address)).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count player cards: %w", err)
	}
	return count > 0, nil
}

func (s *GormInventory) CanClaimDaily(ctx context.Context, address string) (DailyClaimStatus, error) {
	var last models.OwnedCard
	err := s.DB.WithContext(ctx).
		Where("owner_address = ? AND acquired_via = ?", NormalizeAddress(address), models.AcquiredViaDailyClaim).
		Order("acquired_at DESC").
		First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return DailyClaimStatus{CanClaim: true}, nil
	}
	if err != nil {
		return DailyClaimStatus{}, fmt.Errorf("check daily claim: %w", err)
	}
	return nextDailyClaim(last.AcquiredAt, time.Now()), nil
}

func (s *GormInventory) ClaimSettlement(ctx context.Context, result models.MatchResult) (bool, error) {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	res := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "match_id"}}, DoNothing: true}).
		Create(&result)
	if res.Error != nil {
		return false, fmt.Errorf("claim settlement %s: %w", result.MatchID, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// MatchHistory lists settled matches a wallet took part in, newest first.
func (s *GormInventory) MatchHistory(ctx context.Context, address string, limit int) ([]models.MatchResult, error) {
	address = NormalizeAddress(address)
	var results []models.MatchResult
	err := s.DB.WithContext(ctx).
		Where("winner_address = ? OR loser_address = ?", address, address).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("fetch match history: %w", err)
	}
	return results, nil
}
