package review

import (
	"reflect"
	"sync"
)

// Resolver 多态引用解析器
// 设计说明：
// 1. 类型标签优先取别名表（Alias注册），便于存储短而稳定的标签（如"book"）
// 2. 未注册别名时回退为实体具体类型的完整名称（包路径.类型名）
// 3. Ref本身也是Entity，解析时原样返回其标签
// 4. 别名表读多写少，使用读写锁
type Resolver struct {
	mu      sync.RWMutex
	aliases map[reflect.Type]string
}

// NewResolver 创建解析器
func NewResolver() *Resolver {
	return &Resolver{aliases: make(map[reflect.Type]string)}
}

// Alias 为实体类型注册存储标签
// proto可以是值或指针，两者注册到同一类型上
//
// 示例：
//
//	resolver.Alias("book", &book.Book{})
//	resolver.Alias("user", &user.User{})
func (r *Resolver) Alias(tag string, proto Entity) *Resolver {
	t := baseType(reflect.TypeOf(proto))
	if t == nil {
		return r
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.aliases[t] = tag
	return r
}

// TypeTag 返回实体的存储类型标签
func (r *Resolver) TypeTag(entity Entity) string {
	if ref, ok := entity.(Ref); ok {
		return ref.Type
	}
	if ref, ok := entity.(*Ref); ok && ref != nil {
		return ref.Type
	}

	t := baseType(reflect.TypeOf(entity))
	if t == nil {
		return ""
	}

	r.mu.RLock()
	tag, ok := r.aliases[t]
	r.mu.RUnlock()
	if ok {
		return tag
	}

	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// Ref 解析实体的多态引用
// entity为nil（包括带类型的nil指针）时返回false
func (r *Resolver) Ref(entity Entity) (Ref, bool) {
	if isNil(entity) {
		return Ref{}, false
	}
	return Ref{Type: r.TypeTag(entity), ID: entity.EntityID()}, true
}

func baseType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

func isNil(entity Entity) bool {
	if entity == nil {
		return true
	}
	v := reflect.ValueOf(entity)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
