// Package recognition defines the contract for external image-recognition
// services. A Recognizer turns one photo and an organ hint into an ordered
// list of candidates; implementations live in subpackages (see plantnet).
package recognition
