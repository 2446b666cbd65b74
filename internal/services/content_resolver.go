package services

import (
	"fmt"

	"tmig/internal/legacy"
	"tmig/internal/models"

	"gorm.io/gorm"
)

// agencyContentKey 机构专属内容的查找键
type agencyContentKey struct {
	AgencyID uint
	Type     models.ContentType
	Title    string
}

// ContentResolver 把源库自由文本标题解析为目标内容ID。
// 解析优先级严格为：机构专属精确匹配 > 全局精确匹配 > 占位记录 > 未解析。
// 预热阶段把全部候选加载进内存并为无归属的标题建占位记录，
// 之后的解析完全在内存中进行。解析器生命周期为一次运行
type ContentResolver struct {
	target    *gorm.DB
	source    *legacy.Repository
	runLogger *RunLogger

	agencyIndex map[agencyContentKey]uint
	globalIndex map[contentKey]uint
	shellIndex  map[contentKey]uint
	excluded    map[contentKey]bool
	knownTitles map[contentKey]bool
	primed      map[models.ContentType]bool
}

// NewContentResolver 创建解析器（每次运行创建新实例）
func NewContentResolver(target *gorm.DB, source *legacy.Repository, runLogger *RunLogger) *ContentResolver {
	return &ContentResolver{
		target:      target,
		source:      source,
		runLogger:   runLogger,
		agencyIndex: make(map[agencyContentKey]uint),
		globalIndex: make(map[contentKey]uint),
		shellIndex:  make(map[contentKey]uint),
		excluded:    make(map[contentKey]bool),
		knownTitles: make(map[contentKey]bool),
		primed:      make(map[models.ContentType]bool),
	}
}

// Prime 预热一个内容类型：合并管理员维护的映射，加载全部现有内容，
// 对照源库标题全集为无归属的标题创建占位记录。每类型每次运行只执行一次
func (r *ContentResolver) Prime(rc *RunContext, contentType models.ContentType) error {
	if r.primed[contentType] {
		return nil
	}

	// 1. 映射表先于一切合并进候选集
	if err := r.mergeMappings(contentType); err != nil {
		return err
	}

	// 2. 加载该类型的全部现有内容
	var items []models.ContentItem
	if err := r.target.Where("type = ?", contentType).Find(&items).Error; err != nil {
		return fmt.Errorf("加载内容定义失败: %v", err)
	}
	for i := range items {
		r.register(&items[i], items[i].Title)
	}

	// 制度/文档不建占位，预热到此为止
	if !contentType.SupportsShell() {
		r.primed[contentType] = true
		return nil
	}

	// 3. 源库标题全集与候选集做差，缺口建占位记录
	titles, err := r.source.DistinctTitles(contentType)
	if err != nil {
		return err
	}
	created := 0
	for _, title := range titles {
		key := contentKey{Type: contentType, Title: title}
		if r.excluded[key] || r.knownTitles[key] {
			continue
		}
		shell := &models.ContentItem{
			Type:    contentType,
			Title:   title,
			IsShell: true,
			Status:  models.ContentStatusArchived,
		}
		if err := r.target.Create(shell).Error; err != nil {
			return fmt.Errorf("创建占位记录失败: %v", err)
		}
		r.register(shell, title)
		created++
	}

	rc.shellsCreated[contentType] += created
	if created > 0 {
		r.runLogger.Info(rc.RunID, "预热 %s: 新建 %d 条占位记录", contentType, created)
	}

	r.primed[contentType] = true
	return nil
}

// mergeMappings 合并管理员维护的标题映射：排除项进排除集，
// 绑定项把备用标题指向已有内容，并为共享原标题的机构专属副本克隆出
// 同作用域的备用标题记录，保证机构级查找仍然成立
func (r *ContentResolver) mergeMappings(contentType models.ContentType) error {
	var mappings []models.TitleMapping
	err := r.target.Where("content_type = ?", contentType).Find(&mappings).Error
	if err != nil {
		return fmt.Errorf("加载标题映射失败: %v", err)
	}

	for _, mapping := range mappings {
		key := contentKey{Type: contentType, Title: mapping.SourceTitle}

		if mapping.Exclude {
			r.excluded[key] = true
			continue
		}
		if mapping.ContentItemID == nil {
			// 待整理的映射，尚未绑定目标，不参与解析
			continue
		}

		var item models.ContentItem
		if err := r.target.First(&item, *mapping.ContentItemID).Error; err != nil {
			return fmt.Errorf("加载映射目标内容失败(id=%d): %v", *mapping.ContentItemID, err)
		}

		// 备用标题指向映射目标
		r.register(&item, mapping.SourceTitle)

		// 克隆机构专属副本：与映射目标共享原标题的机构级内容，
		// 都要在备用标题下有同作用域的记录
		var siblings []models.ContentItem
		err = r.target.
			Where("type = ? AND title = ? AND agency_id IS NOT NULL AND id <> ?",
				contentType, item.Title, item.ID).
			Find(&siblings).Error
		if err != nil {
			return fmt.Errorf("加载机构专属副本失败: %v", err)
		}

		for _, sibling := range siblings {
			clone := models.ContentItem{
				Type:     contentType,
				Title:    mapping.SourceTitle,
				AgencyID: sibling.AgencyID,
				IsShell:  sibling.IsShell,
				Status:   sibling.Status,
			}
			// 重复运行不再克隆
			err := r.target.
				Where("type = ? AND title = ? AND agency_id = ?",
					contentType, mapping.SourceTitle, *sibling.AgencyID).
				FirstOrCreate(&clone).Error
			if err != nil {
				return fmt.Errorf("克隆机构专属副本失败: %v", err)
			}
			r.register(&clone, mapping.SourceTitle)
		}
	}
	return nil
}

// register 把内容登记进内存候选集。先登记的优先（映射先于普通加载）
func (r *ContentResolver) register(item *models.ContentItem, title string) {
	key := contentKey{Type: item.Type, Title: title}
	r.knownTitles[key] = true

	if item.IsShell {
		if _, ok := r.shellIndex[key]; !ok {
			r.shellIndex[key] = item.ID
		}
		return
	}
	if agencyID, scoped := item.ItemScope().Agency(); scoped {
		akey := agencyContentKey{AgencyID: agencyID, Type: item.Type, Title: title}
		if _, ok := r.agencyIndex[akey]; !ok {
			r.agencyIndex[akey] = item.ID
		}
		return
	}
	if _, ok := r.globalIndex[key]; !ok {
		r.globalIndex[key] = item.ID
	}
}

// Resolve 按四级优先级解析标题。未解析是软失败：
// 记入运行上下文并跳过该任务，绝不中断运行
func (r *ContentResolver) Resolve(rc *RunContext, agencyID uint, contentType models.ContentType, title string) Resolution {
	key := contentKey{Type: contentType, Title: title}

	if r.excluded[key] {
		return Resolution{Kind: ResolutionExcluded}
	}
	if id, ok := r.agencyIndex[agencyContentKey{AgencyID: agencyID, Type: contentType, Title: title}]; ok {
		return Resolution{Kind: ResolutionAgency, ContentItemID: id}
	}
	if id, ok := r.globalIndex[key]; ok {
		return Resolution{Kind: ResolutionGlobal, ContentItemID: id}
	}
	if id, ok := r.shellIndex[key]; ok {
		// 每个标题每次运行只记一次，避免刷屏
		if !rc.shellLogged[key] {
			rc.shellLogged[key] = true
			r.runLogger.Info(rc.RunID, "标题 %q (%s) 命中占位记录", title, contentType)
		}
		return Resolution{Kind: ResolutionShell, ContentItemID: id}
	}

	if !rc.unresolved[key] {
		rc.unresolved[key] = true
		r.runLogger.Warn(rc.RunID, "标题 %q (%s) 无法解析，跳过相关任务", title, contentType)
	}
	return Resolution{Kind: ResolutionUnresolved}
}

// ResolveSimple 制度/文档使用的两级解析：机构专属 > 全局，没有占位层
func (r *ContentResolver) ResolveSimple(rc *RunContext, agencyID uint, contentType models.ContentType, title string) Resolution {
	key := contentKey{Type: contentType, Title: title}

	if r.excluded[key] {
		return Resolution{Kind: ResolutionExcluded}
	}
	if id, ok := r.agencyIndex[agencyContentKey{AgencyID: agencyID, Type: contentType, Title: title}]; ok {
		return Resolution{Kind: ResolutionAgency, ContentItemID: id}
	}
	if id, ok := r.globalIndex[key]; ok {
		return Resolution{Kind: ResolutionGlobal, ContentItemID: id}
	}

	if !rc.unresolved[key] {
		rc.unresolved[key] = true
		r.runLogger.Warn(rc.RunID, "标题 %q (%s) 无法解析，跳过相关任务", title, contentType)
	}
	return Resolution{Kind: ResolutionUnresolved}
}
