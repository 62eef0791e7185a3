package topology

import (
	"context"
	"errors"
	"fmt"
	"time"

	basemodel "switchmap/internal/model/basemodel"
	model "switchmap/internal/model/topology"
	"switchmap/internal/pkg/logger"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// keepRecentEvents 清理时保留的最近事件数
const keepRecentEvents = 2

// EventRepository 事件仓库
// 负责 Event / Root 的数据访问以及保留策略
type EventRepository struct {
	base
}

// Bootstrap 幂等地写入初始化行: Event(1)、Root(1)、Oui(1)
func (r *EventRepository) Bootstrap(ctx context.Context) error {
	now := time.Now().Unix()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.Event{
			BaseModel: basemodel.BaseModel{ID: model.BootstrapEventID},
			Name:      "bootstrap",
			EpochUTC:  now,
			Enabled:   1,
		}).Error; err != nil {
			return err
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.Root{
			BaseModel: basemodel.BaseModel{ID: model.RootID},
			IdxEvent:  model.BootstrapEventID,
			Name:      "root",
			Enabled:   1,
		}).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.Oui{
			BaseModel:    basemodel.BaseModel{ID: model.UnknownOuiID},
			Oui:          "",
			Organization: "Unknown",
			Enabled:      1,
		}).Error
	})
	if err != nil {
		logger.LogError(err, 1001, repoPath, "bootstrap", nil)
		return fmt.Errorf("bootstrap: %w", err)
	}
	return nil
}

// CreateEvent 创建新事件
func (r *EventRepository) CreateEvent(ctx context.Context, name string, epoch int64) (*model.Event, error) {
	event := &model.Event{Name: name, EpochUTC: epoch, Enabled: 1}
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		logger.LogError(err, 1002, repoPath, "create_event", map[string]interface{}{
			"name": name,
		})
		return nil, fmt.Errorf("create_event: %w", err)
	}
	return event, nil
}

// GetEventByID 根据ID获取事件
func (r *EventRepository) GetEventByID(ctx context.Context, id uint64) (*model.Event, error) {
	return selectOne[model.Event](ctx, r.base, 1003, "get_event_by_id", "id = ?", id)
}

// ListEvents 获取全部事件，按ID升序
func (r *EventRepository) ListEvents(ctx context.Context) ([]*model.Event, error) {
	var events []*model.Event
	if err := r.db.WithContext(ctx).Order("id").Find(&events).Error; err != nil {
		logger.LogError(err, 1004, repoPath, "list_events", nil)
		return nil, fmt.Errorf("list_events: %w", err)
	}
	return events, nil
}

// GetRoot 获取根指针
func (r *EventRepository) GetRoot(ctx context.Context) (*model.Root, error) {
	return selectOne[model.Root](ctx, r.base, 1005, "get_root", "id = ?", model.RootID)
}

// AdvanceRoot 将 Root 指向 eventID，并在同一事务内按需清理旧事件
// 更新以 compare-and-swap 方式执行: 仅当 idx_event 仍为读取到的旧值时写入；
// 当前指针已不早于 eventID 时不回退。返回被清理的事件数
func (r *EventRepository) AdvanceRoot(ctx context.Context, eventID uint64, purge bool) (int64, error) {
	var purged int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var root model.Root
		if err := tx.Where("id = ?", model.RootID).First(&root).Error; err != nil {
			return err
		}

		current := root.IdxEvent
		if current < eventID {
			result := tx.Model(&model.Root{}).
				Where("id = ? AND idx_event = ?", model.RootID, current).
				Updates(map[string]interface{}{
					"idx_event":  eventID,
					"updated_at": time.Now(),
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrRootConflict
			}
			current = eventID
		} else {
			logger.LogInfo("Root already at or beyond event, not moving backwards", 1006, repoPath, "advance_root", map[string]interface{}{
				"current": current,
				"event":   eventID,
			})
		}

		if !purge {
			return nil
		}
		n, err := purgeEvents(tx, current)
		purged = n
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrRootConflict) {
			logger.LogError(err, 1007, repoPath, "advance_root", map[string]interface{}{
				"event": eventID,
			})
		}
		return 0, fmt.Errorf("advance_root: %w", err)
	}
	return purged, nil
}

// Purge 按保留策略清理事件(不移动 Root)
func (r *EventRepository) Purge(ctx context.Context) (int64, error) {
	var purged int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var root model.Root
		if err := tx.Where("id = ?", model.RootID).First(&root).Error; err != nil {
			return err
		}
		n, err := purgeEvents(tx, root.IdxEvent)
		purged = n
		return err
	})
	if err != nil {
		logger.LogError(err, 1008, repoPath, "purge_events", nil)
		return 0, fmt.Errorf("purge_events: %w", err)
	}
	return purged, nil
}

// purgeEvents 删除除 {初始化事件, Root 当前事件, 最近两个事件} 以外的全部事件
// 子表数据由外键级联删除
func purgeEvents(tx *gorm.DB, rootEvent uint64) (int64, error) {
	var recent []uint64
	if err := tx.Model(&model.Event{}).Order("id desc").Limit(keepRecentEvents).Pluck("id", &recent).Error; err != nil {
		return 0, err
	}

	keep := append([]uint64{model.BootstrapEventID, rootEvent}, recent...)
	result := tx.Where("id NOT IN ?", keep).Delete(&model.Event{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
