package game

// GameStats counts what happened in the current game.
type GameStats struct {
	Moves         int
	FoodEaten     int
	CapsulesEaten int
	GhostsEaten   int
}
