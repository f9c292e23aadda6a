package combat

// Damage is the flat damage an attack deals through a defense. It is never
// negative.
func Damage(attack, defense int) int {
	return max(0, attack-defense)
}
