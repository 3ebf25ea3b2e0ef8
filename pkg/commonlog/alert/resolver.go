package alert

// ChannelResolver выбирает канал назначения по уровню алерта.
// Реализации должны быть без побочных эффектов и безопасны для конкурентного вызова.
type ChannelResolver interface {
	ResolveChannel(level Level) string
}

// DefaultChannelResolver сопоставляет уровни каналам по таблице.
// Для уровня без записи возвращается DefaultChannel.
type DefaultChannelResolver struct {
	ChannelMap     map[Level]string
	DefaultChannel string
}

// NewDefaultChannelResolver создаёт резолвер по таблице уровней.
func NewDefaultChannelResolver(channels map[Level]string, defaultChannel string) *DefaultChannelResolver {
	return &DefaultChannelResolver{ChannelMap: channels, DefaultChannel: defaultChannel}
}

// ResolveChannel возвращает канал для уровня или DefaultChannel.
func (r *DefaultChannelResolver) ResolveChannel(level Level) string {
	if ch, ok := r.ChannelMap[level]; ok {
		return ch
	}
	return r.DefaultChannel
}

// ChannelResolverFunc позволяет использовать обычную функцию как ChannelResolver.
type ChannelResolverFunc func(level Level) string

// ResolveChannel вызывает f(level).
func (f ChannelResolverFunc) ResolveChannel(level Level) string {
	return f(level)
}
