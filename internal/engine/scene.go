package engine

import "github.com/google/uuid"

type Scene struct {
	Name        string
	GameObjects []*GameObject
	byID        map[uuid.UUID]*GameObject
}

func NewScene(name string) *Scene {
	return &Scene{
		Name:        name,
		GameObjects: make([]*GameObject, 0),
		byID:        make(map[uuid.UUID]*GameObject),
	}
}

func (s *Scene) AddGameObject(g *GameObject) {
	g.Scene = s
	s.GameObjects = append(s.GameObjects, g)
	s.byID[g.ID] = g
}

func (s *Scene) RemoveGameObject(g *GameObject) {
	delete(s.byID, g.ID)
	for i, obj := range s.GameObjects {
		if obj == g {
			s.GameObjects = append(s.GameObjects[:i], s.GameObjects[i+1:]...)
			if g.Scene == s {
				g.Scene = nil
			}
			return
		}
	}
}

// FindByID looks up root objects registered with the scene.
func (s *Scene) FindByID(id uuid.UUID) *GameObject {
	return s.byID[id]
}

func (s *Scene) FindByName(name string) *GameObject {
	for _, g := range s.GameObjects {
		if g.Name == name {
			return g
		}
	}
	return nil
}

func (s *Scene) FindByTag(tag string) []*GameObject {
	var result []*GameObject
	for _, g := range s.GameObjects {
		if g.HasTag(tag) {
			result = append(result, g)
		}
	}
	return result
}

func (s *Scene) Start() {
	for _, g := range s.GameObjects {
		g.Start()
	}
}

func (s *Scene) Update(deltaTime float32) {
	for _, g := range s.GameObjects {
		g.Update(deltaTime)
	}
}
