package ai

// Prompt templates for the three generation flows. The model is asked to reply
// with a single JSON object matching the payload schema; no prose.

const chartSystemPrompt = `You are a musical expert. Your task is to generate a chord progression with REAL lyrics, measures, and precise timestamps for a given song. Respond with a single JSON object and nothing else.`

const chartUserPromptTemplate = `Generate the chords, lyrics, and start times for "%s" by "%s".

Please adhere to the following arrangement style: %s.
- If the style is 'Pop Arrangement', create a more intricate arrangement. Feel free to use techniques like slash chords (e.g., G/B) to create interesting basslines, or add 7ths, 9ths, or other extensions.

For each line of the song, provide:
1. The lyrics for that line.
2. The exact start time of that line in seconds (as a number), named 'startTime'.
3. A 'measures' array containing the chords for that line, broken down into measures.

For EACH measure in the 'measures' array, you MUST provide:
1. The chords for that measure (e.g., "C", "G Am").
2. The exact start time of THAT MEASURE in seconds (as a number), also named 'startTime'. This is critical for synchronization.

Also, provide an array of all unique chords found in the song.

IMPORTANT: You must generate chords for the entire song structure using the REAL LYRICS. Do not leave out any data.

Structure the final output as a JSON object: {"lines": [{"lyrics": "...", "startTime": 15.5, "measures": [{"chords": "C", "startTime": 15.5}]}], "uniqueChords": ["C"]}`

const fretboardSystemPrompt = `You are an expert guitarist and music theorist. Respond with a single JSON object and nothing else.`

const fretboardUserPromptTemplate = `Generate the standard fingering for the guitar chord "%s".

Provide the fret numbers for each of the 6 strings (E, A, D, G, B, e), where -1 indicates a muted string and 0 indicates an open string.

Also provide the suggested fingers (1=index, 2=middle, 3=ring, 4=pinky) for the fretted notes. Use 0 for open strings.

Handle complex chords, including slash chords (inversions). For a slash chord like "C/G", "G" is the bass note. The lowest-pitched string played should be a G.

Example for "Am": {"frets": [-1, 0, 2, 2, 1, 0], "fingers": [0, 0, 2, 3, 1, 0]}
Example for "F" (barre): {"frets": [1, 3, 3, 2, 1, 1], "fingers": [1, 3, 4, 2, 1, 1]}
Example for "C/G": {"frets": [3, 3, 2, 0, 1, 0], "fingers": [3, 4, 2, 0, 1, 0]}

Generate the simplest, most common voicing for the chord as a JSON object with "frets" and "fingers" arrays of exactly 6 numbers each.`

const accompanimentSystemPrompt = `You are an expert guitar instructor. Respond with a single JSON object and nothing else.`

const accompanimentUserPromptTemplate = `For the song "%s" by "%s", which has the following chord progression:

%s

Provide practical and creative guitar accompaniment advice based on the arrangement style: "%s".

1. Playing style: describe the overall feel and dynamics (e.g., "start soft in the verses, build up to the chorus").
2. Strumming pattern: a versatile, common pattern in "D DU UDU" format (D=Down, U=Up). Keep it simple and effective.
3. Advanced techniques (optional): for richer styles, suggest embellishments like palm muting, a fingerpicking pattern for the verse, or hammer-ons on specific chord changes.

Be concise, clear, and encouraging.

Respond as a JSON object: {"playingStyleSuggestion": "...", "strummingPattern": "...", "advancedTechniques": "..."}`
